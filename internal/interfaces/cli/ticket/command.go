// Package ticket provides operator commands that work on the ledger
// directly, without a running server.
package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/antrian-kiosk/antrian/internal/application/ticket/usecases"
	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/cache"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/config"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/ledger"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/pubsub"
	"github.com/antrian-kiosk/antrian/internal/shared/biztime"
	sharedConfig "github.com/antrian-kiosk/antrian/internal/shared/config"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

var (
	env        string
	configPath string
	asJSON     bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Read and append queue tickets",
		Long:  `Inspect today's queue and append tickets straight to the configured ledger.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "last",
			Short: "Show the last ticket issued today",
			Args:  cobra.NoArgs,
			RunE:  runLast,
		},
		&cobra.Command{
			Use:   "next",
			Short: "Preview the next ticket number",
			Args:  cobra.NoArgs,
			RunE:  runNext,
		},
		&cobra.Command{
			Use:   "submit <number>",
			Short: "Append a ticket with the given number",
			Args:  cobra.ExactArgs(1),
			RunE:  runSubmit,
		},
		&cobra.Command{
			Use:   "issue",
			Short: "Compute and append the next ticket",
			Args:  cobra.NoArgs,
			RunE:  runIssue,
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Print tickets as they are issued (events.driver=redis)",
			Args:  cobra.NoArgs,
			RunE:  runWatch,
		},
	)

	return cmd
}

type cliEnv struct {
	cfg    *config.Config
	log    logger.Interface
	handle *ledger.Handle
	policy usecases.Policy
	close  func()
}

func initEnv(ctx context.Context) (*cliEnv, error) {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger, false); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	handle, err := ledger.Open(ctx, ledger.Deps{
		Ledger:      cfg.Ledger,
		Database:    cfg.Database,
		RedisConfig: cfg.Redis,
	}, log.Named("ledger"))
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	return &cliEnv{
		cfg:    cfg,
		log:    log,
		handle: handle,
		policy: usecases.Policy{
			Timeout:                  cfg.Ledger.Timeout(),
			StrictSequence:           cfg.Ticket.StrictSequence,
			MaxConflictRetries:       cfg.Ticket.MaxConflictRetries,
			RequireSequentialNumbers: cfg.Ticket.RequireSequentialNumbers,
			PublishTimeout:           cfg.Events.PublishTimeout(),
		},
		close: func() {
			if err := handle.Close(); err != nil {
				log.Warnw("failed to close ledger", "error", err)
			}
		},
	}, nil
}

func runLast(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	uc := usecases.NewGetLastTicketUseCase(e.handle.Ledger, e.handle.Settings, e.policy, biztime.Now, e.log)
	result, err := uc.Execute(ctx)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), result, func(w io.Writer) {
		if result.TicketNumber == 0 {
			fmt.Fprintln(w, "No tickets issued today")
		} else {
			fmt.Fprintf(w, "Last ticket: %d (%s)\n", result.TicketNumber, result.Timestamp)
		}
		fmt.Fprintf(w, "Next ticket: %s\n", result.NextTicketNumber)
	})
}

func runNext(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	uc := usecases.NewNextTicketNumberUseCase(e.handle.Ledger, e.handle.Settings, e.policy, biztime.Now, e.log)
	result, err := uc.Execute(ctx)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), result, func(w io.Writer) {
		fmt.Fprintf(w, "Next ticket: %s (%d issued today)\n", result.NextTicketNumber, result.IssuedToday)
	})
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	publisher, closePub, err := newPublisher(ctx, e)
	if err != nil {
		return err
	}
	defer closePub()

	uc := usecases.NewSubmitTicketUseCase(e.handle.Ledger, publisher, e.handle.Settings, e.policy, biztime.Now, e.log)
	result, err := uc.Execute(ctx, usecases.SubmitTicketCommand{TicketNumber: args[0]})
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), result, func(w io.Writer) {
		fmt.Fprintf(w, "Recorded ticket %s at %s\n", result.TicketNumber, result.Timestamp)
	})
}

func runIssue(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	publisher, closePub, err := newPublisher(ctx, e)
	if err != nil {
		return err
	}
	defer closePub()

	uc := usecases.NewIssueTicketUseCase(e.handle.Ledger, publisher, e.handle.Settings, e.policy, biztime.Now, e.log)
	result, err := uc.Execute(ctx)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), result, func(w io.Writer) {
		fmt.Fprintf(w, "Issued ticket %s at %s\n", result.TicketNumber, result.Timestamp)
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Events.Driver != sharedConfig.EventsDriverRedis {
		return fmt.Errorf("watch needs events.driver=redis, got %q", cfg.Events.Driver)
	}
	if err := logger.Init(&cfg.Logger, false); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	var mu sync.Mutex
	bus := pubsub.NewRedisTicketEventBus(client, cfg.Events.Channel, log)

	fmt.Fprintln(cmd.ErrOrStderr(), "Watching for tickets, press Ctrl+C to stop")
	err = bus.Subscribe(ctx, func(event pubsub.TicketIssuedEvent) {
		mu.Lock()
		defer mu.Unlock()
		if asJSON {
			_ = json.NewEncoder(out).Encode(event)
			return
		}
		fmt.Fprintf(out, "%s  %-12s %s\n", event.Timestamp, event.TicketNumber, event.Source)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newPublisher makes CLI-issued tickets visible to display boards when an
// event transport is configured.
func newPublisher(ctx context.Context, e *cliEnv) (events.EventPublisher, func(), error) {
	var client *redis.Client
	if e.cfg.Events.Driver == sharedConfig.EventsDriverRedis {
		c, err := cache.NewRedisClient(ctx, e.cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		client = c
	}
	closeClient := func() {
		if client != nil {
			_ = client.Close()
		}
	}

	transport, err := pubsub.NewTransport(e.cfg.Events, client, e.log.Named("events"))
	if err != nil {
		closeClient()
		return nil, nil, err
	}
	return transport.Publisher, func() {
		_ = transport.Close()
		closeClient()
	}, nil
}

func printResult(w io.Writer, v interface{}, text func(io.Writer)) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
