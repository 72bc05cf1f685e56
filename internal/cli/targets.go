package cli

import (
	"fmt"

	"github.com/tpodg/serverprep/internal/config"
	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/server"
	"github.com/tpodg/serverprep/internal/task"
)

// target is a host together with the task overrides that apply to it.
type target struct {
	host  *host.Host
	tasks map[string]any
}

func newSSHServer(sCfg config.ServerConfig) *server.SSHServer {
	return server.NewSSHServer(sCfg.Name, sCfg.Address, server.User{
		Name:         sCfg.User.Name,
		SSHKey:       sCfg.User.SSHKey,
		SudoPassword: sCfg.User.SudoPassword,
	}, sCfg.KnownHostsPath, server.SSHOptions{
		UseAgent:         sCfg.UseAgent,
		HandshakeTimeout: sCfg.HandshakeTimeout,
	})
}

// selectServers returns the configured servers, restricted to names when
// given, in config order.
func selectServers(cfg *config.Config, names []string) ([]config.ServerConfig, error) {
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("no servers configured")
	}
	if len(names) == 0 {
		return cfg.Servers, nil
	}

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := cfg.Server(name); !ok {
			return nil, fmt.Errorf("unknown server: %s", name)
		}
		wanted[name] = struct{}{}
	}
	selected := make([]config.ServerConfig, 0, len(wanted))
	for _, s := range cfg.Servers {
		if _, ok := wanted[s.Name]; ok {
			selected = append(selected, s)
		}
	}
	return selected, nil
}

// resolveTargets returns the local host, or the configured servers when
// remote is set. Server tasks are merged over the top-level tasks.
func resolveTargets(cfg *config.Config, remote bool, names []string) ([]target, error) {
	if !remote {
		if len(names) > 0 {
			return nil, fmt.Errorf("--only requires --servers")
		}
		return []target{{
			host:  host.NewShellHost(server.NewLocalServer()),
			tasks: cfg.Tasks,
		}}, nil
	}

	servers, err := selectServers(cfg, names)
	if err != nil {
		return nil, err
	}
	targets := make([]target, 0, len(servers))
	for _, sCfg := range servers {
		targets = append(targets, target{
			host:  host.NewShellHost(newSSHServer(sCfg)),
			tasks: task.MergeOverrides(cfg.Tasks, sCfg.Tasks),
		})
	}
	return targets, nil
}
