package consul

import (
	"context"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

const watchRetry = time.Second

// Watch blocks on the host/ prefix and calls onChange whenever its index
// moves. It returns when ctx is done. Guard-owned keys (settings, audit) do
// not wake the watch.
func (r *Registry) Watch(ctx context.Context, logger *zap.Logger, onChange func()) {
	logger = logger.Named("consul-watch")
	var waitIndex uint64
	for {
		if ctx.Err() != nil {
			return
		}
		q := (&consulapi.QueryOptions{WaitIndex: waitIndex}).WithContext(ctx)
		_, meta, err := r.kv.List(hostPrefix, q)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("Consul watch failed, retrying", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(watchRetry):
			}
			continue
		}
		idx := meta.LastIndex
		if idx < waitIndex {
			// index went backwards (snapshot restore); start over
			idx = 0
		}
		if waitIndex != 0 && idx != waitIndex {
			logger.Debug("Host state changed", zap.Uint64("index", idx))
			onChange()
		}
		waitIndex = idx
	}
}
