// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"fmt"
	"net"
)

// probeAddress is only used to select a route. Connecting a UDP socket
// sends no packets.
const probeAddress = "8.8.8.8:80"

// OutboundIP returns the local IP address of the interface the kernel
// would use to reach the public internet. On a vehicle's companion
// computer this is the address operators point their ground-station
// clients at.
func OutboundIP() (net.IP, error) {
	connection, err := net.Dial("udp", probeAddress)
	if err != nil {
		return nil, fmt.Errorf("selecting outbound route: %w", err)
	}
	defer connection.Close()

	address, ok := connection.LocalAddr().(*net.UDPAddr)
	if !ok {
		return nil, fmt.Errorf("unexpected local address type %T", connection.LocalAddr())
	}
	return address.IP, nil
}

// AdvertiseAddress combines the outbound IP with the port of listenAddr
// ("0.0.0.0:5760" becomes "192.168.1.2:5760"). When no outbound route
// exists, or listenAddr names a specific host, listenAddr is returned
// unchanged.
func AdvertiseAddress(listenAddr net.Addr) string {
	tcpAddress, ok := listenAddr.(*net.TCPAddr)
	if !ok || !tcpAddress.IP.IsUnspecified() {
		return listenAddr.String()
	}
	ip, err := OutboundIP()
	if err != nil {
		return listenAddr.String()
	}
	return net.JoinHostPort(ip.String(), fmt.Sprint(tcpAddress.Port))
}
