// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovlink/telebridge/status"
)

var (
	labelStyle = lipgloss.NewStyle().
			Width(16).
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	stateColors = map[string]lipgloss.Color{
		"running":       lipgloss.Color("42"),
		"starting":      lipgloss.Color("220"),
		"shutting_down": lipgloss.Color("208"),
		"stopped":       lipgloss.Color("196"),
	}
)

func renderStatus(snapshot *status.Status) string {
	stateStyle := lipgloss.NewStyle().Bold(true)
	if color, ok := stateColors[snapshot.State]; ok {
		stateStyle = stateStyle.Foreground(color)
	}

	rows := []struct {
		label string
		value string
	}{
		{"source", snapshot.Source},
		{"listening", snapshot.ListenAddress},
		{"uptime", formatUptime(snapshot.UptimeSeconds)},
		{"clients", fmt.Sprint(snapshot.Clients)},
		{"frames", fmt.Sprint(snapshot.Frames)},
		{"bytes in", fmt.Sprintf("%s (%d pending)", formatBytes(snapshot.BytesIn), snapshot.PendingBytes)},
		{"bytes out", formatBytes(snapshot.BytesOut)},
		{"commands", formatBytes(snapshot.CommandBytes)},
		{"connects", fmt.Sprintf("%d (%d disconnected)", snapshot.Connects, snapshot.Disconnects)},
		{"source errors", fmt.Sprint(snapshot.SourceErrors)},
		{"accept errors", fmt.Sprint(snapshot.AcceptErrors)},
	}

	var builder strings.Builder
	builder.WriteString(headerStyle.Render("telebridge") + " " + stateStyle.Render(snapshot.State) + "\n")
	for _, row := range rows {
		builder.WriteString(labelStyle.Render(row.label) + valueStyle.Render(row.value) + "\n")
	}
	if snapshot.Version != "" {
		builder.WriteString(labelStyle.Render("version") + valueStyle.Render(snapshot.Version) + "\n")
	}
	return builder.String()
}

func renderClients(clients []status.Client, now time.Time) string {
	var builder strings.Builder
	builder.WriteString("\n" + headerStyle.Render(fmt.Sprintf("clients (%d)", len(clients))) + "\n")
	if len(clients) == 0 {
		builder.WriteString(valueStyle.Render("none connected") + "\n")
		return builder.String()
	}
	for _, client := range clients {
		connected := now.Sub(time.Unix(client.ConnectedAt, 0)).Truncate(time.Second)
		builder.WriteString(valueStyle.Render(fmt.Sprintf("%-24s %s  connected %s ago", client.RemoteAddr, client.ID, connected)) + "\n")
	}
	return builder.String()
}

func formatUptime(seconds float64) string {
	return (time.Duration(seconds) * time.Second).String()
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	value := float64(n)
	for _, suffix := range []string{"KiB", "MiB", "GiB"} {
		value /= unit
		if value < unit {
			return fmt.Sprintf("%.1f %s", value, suffix)
		}
	}
	return fmt.Sprintf("%.1f TiB", value/unit)
}
