package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/haplonet/pkg/cache"
	pkgio "github.com/matzehuels/haplonet/pkg/io"
	"github.com/matzehuels/haplonet/pkg/network"
	"github.com/matzehuels/haplonet/pkg/observability"
)

// input is a description read from disk, kept as bytes so that it can be
// hashed for the layout cache before it is parsed.
type input struct {
	data      []byte
	format    pkgio.Format
	partition []byte
}

func readInput(opts Options) (*input, error) {
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.Input, err)
	}
	in := &input{data: data, format: opts.Format}
	if in.format == pkgio.FormatAuto {
		in.format = pkgio.Detect(opts.Input, data)
	}
	if opts.Partition != "" {
		if in.partition, err = os.ReadFile(opts.Partition); err != nil {
			return nil, fmt.Errorf("read %s: %w", opts.Partition, err)
		}
	}
	return in, nil
}

// hash covers everything read from disk. The format is part of the layout
// key, so it is not repeated here.
func (in *input) hash() string {
	h := cache.Hash(in.data)
	if in.partition != nil {
		h = cache.Hash([]byte(h + ":" + cache.Hash(in.partition)))
	}
	return h
}

// Import reads the description and partition named by opts into a network.
func Import(ctx context.Context, opts Options) (*network.Network, error) {
	in, err := readInput(opts)
	if err != nil {
		return nil, err
	}
	return in.build(ctx, opts)
}

func (in *input) build(ctx context.Context, opts Options) (n *network.Network, err error) {
	hooks := observability.Pipeline()
	hooks.OnImportStart(ctx, string(in.format), opts.Input)
	start := time.Now()
	defer func() {
		count := 0
		if n != nil {
			count = n.Len()
		}
		hooks.OnImportComplete(ctx, string(in.format), opts.Input, count, time.Since(start), err)
	}()

	n, err = pkgio.Read(bytes.NewReader(in.data), in.format, opts.Network)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", opts.Input, err)
	}
	if in.partition != nil {
		partition, err := pkgio.ReadPartition(bytes.NewReader(in.partition))
		if err != nil {
			return nil, fmt.Errorf("partition %s: %w", opts.Partition, err)
		}
		if _, err := n.ApplyPartition(partition); err != nil {
			return nil, fmt.Errorf("partition %s: %w", opts.Partition, err)
		}
	}
	return n, nil
}
