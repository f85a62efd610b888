package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errAborted = errors.New("aborted")

// ask muestra prompt y lee una línea. Una línea vacía retorna def.
func (c *cli) ask(prompt, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", prompt, def)
	} else {
		fmt.Fprintf(c.out, "%s: ", prompt)
	}
	line, err := c.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		return "", errAborted
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// argOrAsk usa args[i] si está presente y si no pregunta.
func (c *cli) argOrAsk(args []string, i int, prompt string) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	return c.ask(prompt, "")
}

// confirm pide Y/N. --yes la saltea.
func (c *cli) confirm(prompt string) (bool, error) {
	if c.yes {
		return true, nil
	}
	for {
		v, err := c.ask(prompt+" Y/N", "N")
		if err != nil {
			return false, err
		}
		switch strings.ToUpper(v) {
		case "Y":
			return true, nil
		case "N":
			return false, nil
		}
	}
}

// pick muestra items numerados desde 1 y retorna el índice elegido.
// Una respuesta vacía aborta.
func (c *cli) pick(prompt string, items []string) (int, error) {
	if len(items) == 0 {
		fmt.Fprintln(c.out, "No options to pick from.")
		return 0, errAborted
	}
	fmt.Fprintln(c.out, prompt)
	for i, it := range items {
		fmt.Fprintf(c.out, " [%d] %s\n", i+1, it)
	}
	for {
		v, err := c.ask("Choice", "")
		if err != nil || v == "" {
			return 0, errAborted
		}
		n, err := strconv.Atoi(v)
		if err == nil && n >= 1 && n <= len(items) {
			return n - 1, nil
		}
	}
}
