package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/muurk/tourguide/internal/geom"
)

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q (want WIDTHxHEIGHT)", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	return w, h, nil
}

// parseFloats parses n comma-separated numbers.
func parseFloats(s string, n int, what string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid %s %q (want %d comma-separated numbers)", what, s, n)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", what, s, err)
		}
		out[i] = v
	}
	return out, nil
}

// parsePoint parses "X,Y".
func parsePoint(s string) (geom.Point, error) {
	v, err := parseFloats(s, 2, "scroll offset")
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: v[0], Y: v[1]}, nil
}

// parseRect parses "TOP,LEFT,WIDTH,HEIGHT".
func parseRect(s string) (geom.Rect, error) {
	v, err := parseFloats(s, 4, "target rect")
	if err != nil {
		return geom.Rect{}, err
	}
	return geom.Rect{Top: v[0], Left: v[1], Width: v[2], Height: v[3]}, nil
}

// splitListen splits a listen address such as ":8787" into host and port.
func splitListen(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in listen address %q", addr)
	}
	return host, port, nil
}
