package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/yoockh/isthissoup/config"
	"github.com/yoockh/isthissoup/internal/console"
	"github.com/yoockh/isthissoup/internal/tui"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gateway := flag.String("gateway", cfg.GatewayURL, "Base URL of the soup gateway")
	style := flag.String("style", "dark", "Glamour style for the final answer (dark, light, notty)")
	flag.Parse()

	client := console.NewClient(*gateway, &http.Client{})
	m := tui.New(client, tui.Options{GlamourStyle: *style})

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
