package restis

import "context"

type (
	// Pipeline wraps an ordered sequence of commands to be processed
	// with a single request/response exchange. A pipeline is executed
	// at most once and is not safe for concurrent use.
	Pipeline interface {
		// Queue attaches a command to this pipeline. This command is not
		// sent to the proxy until Exec is invoked.
		Queue(command Command) Pipeline

		// Len returns the number of queued commands.
		Len() int

		// Exec sends all queued commands in a single request and returns
		// the result of each command in queue order.
		Exec(ctx context.Context) ([]Result, error)
	}

	pipeline struct {
		client    *client
		mode      batchMode
		commands  []Command
		err       error
		exhausted bool
	}

	batchMode int
)

const (
	modePipeline batchMode = iota
	modeTransaction
)

func (m batchMode) path() string {
	if m == modeTransaction {
		return transactionPath
	}

	return pipelinePath
}

func newPipeline(client *client, mode batchMode) Pipeline {
	return &pipeline{
		client:   client,
		mode:     mode,
		commands: []Command{},
	}
}

// Queue records the command. The first invalid command fails the whole
// batch when it is executed. Commands queued after Exec are rejected.
func (p *pipeline) Queue(command Command) Pipeline {
	if p.exhausted {
		p.err = ErrBatchExhausted
		return p
	}

	if command.err != nil && p.err == nil {
		p.err = command.err
	}

	p.commands = append(p.commands, command)
	return p
}

func (p *pipeline) Len() int {
	return len(p.commands)
}

// Exec consumes the pipeline. In pipeline mode per-command failures are
// reported in each Result; in transaction mode a rejected transaction
// fails with a BatchAbortedError and no results.
func (p *pipeline) Exec(ctx context.Context) ([]Result, error) {
	if p.exhausted {
		return nil, ErrBatchExhausted
	}

	commands := p.commands
	p.exhausted = true
	p.commands = nil

	if p.err != nil {
		return nil, p.err
	}

	if len(commands) == 0 {
		return []Result{}, nil
	}

	return p.client.runBatch(ctx, p.mode, commands)
}
