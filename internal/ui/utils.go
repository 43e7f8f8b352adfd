package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Colors for consistent UI
const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

// console wraps the menu's input and output streams.
type console struct {
	in  *bufio.Reader
	out io.Writer
}

func (c console) PrintWarning(message string) {
	fmt.Fprintf(c.out, "%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Fprintf(c.out, "%s%s%s\n", ColorYellow, message, ColorReset)
}

func (c console) PrintError(message string) {
	fmt.Fprintf(c.out, "\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

func (c console) PrintSuccess(message string) {
	fmt.Fprintf(c.out, "\n%s%s%s\n", ColorGreen, message, ColorReset)
}

func (c console) PrintInfo(message string) {
	fmt.Fprintf(c.out, "%s%s%s", ColorBlue, message, ColorReset)
}

// ReadString reads one trimmed line. It returns io.EOF once input is exhausted.
func (c console) ReadString(prompt string) (string, error) {
	c.PrintInfo(prompt)
	input, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ReadInt reads an integer between min and max.
func (c console) ReadInt(prompt string, min, max int) (int, error) {
	input, err := c.ReadString(prompt)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}
	return value, nil
}

// ReadFloat reads a number; an empty line yields def.
func (c console) ReadFloat(prompt string, def float64) (float64, error) {
	input, err := c.ReadString(prompt)
	if err != nil {
		return 0, err
	}
	if input == "" {
		return def, nil
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	return value, nil
}

// ReadYesNo reads y/n; an empty line yields def.
func (c console) ReadYesNo(prompt string, def bool) (bool, error) {
	input, err := c.ReadString(prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(input) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, fmt.Errorf("please answer y or n, got %q", input)
}
