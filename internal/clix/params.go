package clix

import (
	"fmt"

	"github.com/spf13/pflag"

	"triage/internal/config"
)

// ListenParams is the address the server binds to.
type ListenParams struct {
	Addr string
	Port int
}

func (p ListenParams) String() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}

// ParseListen applies --addr and --port to the configured server address.
// Flags that were not set on the command line leave the config value in place.
func ParseListen(flags *pflag.FlagSet, cfg config.ServerConfig) (ListenParams, error) {
	params := ListenParams{Addr: cfg.Addr, Port: cfg.Port}
	if flags.Changed("addr") {
		addr, err := flags.GetString("addr")
		if err != nil {
			return params, err
		}
		params.Addr = addr
	}
	if flags.Changed("port") {
		port, err := flags.GetInt("port")
		if err != nil {
			return params, err
		}
		if port <= 0 || port > 65535 {
			return params, fmt.Errorf("invalid port: %d", port)
		}
		params.Port = port
	}
	return params, nil
}
