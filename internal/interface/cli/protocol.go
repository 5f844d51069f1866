package cli

import (
	"fmt"

	"github.com/agentwire/agentwire/internal/adapter/gateway/coordination"
	"github.com/agentwire/agentwire/internal/application/service"
	"github.com/agentwire/agentwire/internal/domain/message"
	"github.com/agentwire/agentwire/internal/infra/repository/messagestore"
	"github.com/agentwire/agentwire/internal/interface/external/spacetimecli"
	"github.com/spf13/afero"
)

// newProtocol builds the protocol handle for the effective agent,
// environment and home directory.
func newProtocol() (*service.Protocol, error) {
	env := environment()
	if _, err := message.ParseEnvironment(env); err != nil {
		return nil, err
	}
	paths := homePaths()
	fsys := afero.NewOsFs()
	store := messagestore.New(fsys, paths.MessageFile(env))

	var opts []service.Option
	if globalConfig.Coordination() {
		runner := spacetimecli.Runner{
			Bin:     globalConfig.CoordinationBin(),
			Timeout: globalConfig.Timeout(),
		}
		opts = append(opts, service.WithBridge(coordination.New(agentID(), runner)))
	}

	p, err := service.NewProtocol(agentID(), globalConfig, store, opts...)
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return p, nil
}
