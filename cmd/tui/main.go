// Command tui is the terminal client for the MoneyLens API.
//
// The password is read from MONEYLENS_PASSWORD; the API address and email
// come from the config file or MONEYLENS_API_URL and MONEYLENS_EMAIL.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"moneylens/internal/client"
	"moneylens/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "tui:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	defaultPath, err := tui.DefaultConfigPath()
	if err != nil {
		defaultPath = ""
	}

	flags := pflag.NewFlagSet("tui", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", defaultPath, "TOML config file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := tui.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	password := os.Getenv("MONEYLENS_PASSWORD")
	if cfg.Email == "" || password == "" {
		return errors.New("set email in the config file (or MONEYLENS_EMAIL) and MONEYLENS_PASSWORD")
	}

	api := client.NewClient(cfg.APIURL, &http.Client{Timeout: 20 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if _, err := api.Login(ctx, cfg.Email, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	_, err = tea.NewProgram(tui.New(api), tea.WithAltScreen()).Run()
	return err
}
