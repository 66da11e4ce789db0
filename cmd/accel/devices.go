package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/born-ml/accel/acc"
	"github.com/born-ml/accel/dev"
	"github.com/born-ml/accel/vec"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	deviceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).MarginLeft(2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(24).MarginLeft(4)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	accStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).MarginLeft(4)
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List platforms, devices and accelerator properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listDevices(cmd.OutOrStdout())
		},
	}
}

func listDevices(w io.Writer) error {
	for _, p := range dev.Platforms() {
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%d devices)", p.Name(), p.CountDevices())))
		for i := range p.CountDevices() {
			d, err := p.DeviceByIndex(i)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, deviceStyle.Render(d.String()))
			field(w, "cores", d.Cores)
			field(w, "warp size", d.WarpSize)
			field(w, "pitch alignment", d.PitchAlignment)
			if len(d.Features) > 0 {
				field(w, "features", strings.Join(d.Features, " "))
			}
			if err := listProps(w, d); err != nil {
				return err
			}
		}
	}
	return nil
}

func listProps(w io.Writer, d *dev.Device) error {
	switch d.Kind() {
	case dev.CPU:
		if err := props[acc.CpuSerial[vec.D1, int]](w, d); err != nil {
			return err
		}
		if err := props[acc.CpuThreads[vec.D1, int]](w, d); err != nil {
			return err
		}
		return props[acc.CpuBlocks[vec.D1, int]](w, d)
	case dev.GPUSim:
		return props[acc.GpuSim[vec.D1, int]](w, d)
	}
	return nil
}

func props[A acc.Kind[vec.D1, int]](w io.Writer, d *dev.Device) error {
	var a A
	p, err := acc.GetProps[A, vec.D1, int](d)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, accStyle.Render(fmt.Sprintf("%s (%s queue)", a.Name(), a.QueueBehavior())))
	field(w, "multiprocessors", p.MultiProcessorCount)
	field(w, "block threads max", p.BlockThreadCountMax)
	field(w, "shared memory bytes", p.SharedMemSizeBytes)
	return nil
}

func field(w io.Writer, label string, value any) {
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(fmt.Sprint(value))))
}
