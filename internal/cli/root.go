package cli

import (
	"time"

	"github.com/alexanderramin/workload/internal/calendar"
	"github.com/alexanderramin/workload/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Workers    service.WorkerService
	Capacity   service.CapacityService
	Allocation service.AllocationService
	Blocks     service.BlockService

	Calendar *calendar.Calendar
	Logger   zerolog.Logger

	// DefaultSchedule is the default --schedule of worker add.
	DefaultSchedule string
	// DefaultLunch is shown for workers without their own lunch window.
	DefaultLunch calendar.Window
	// MorningDeliveryCap is the default --morning-cap of plan.
	MorningDeliveryCap float64
	// MetricsAddr is the default listen address of serve-metrics.
	MetricsAddr string

	// IsInteractive reports whether prompts can be shown. Nil means never.
	IsInteractive func() bool
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) today() calendar.Day { return a.Calendar.DayOf(a.now()) }

func (a *App) interactive() bool { return a.IsInteractive != nil && a.IsInteractive() }

// NewRootCmd creates the top-level "workload" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "workload",
		Short:         "Translator workload allocation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Read by main before the tree is built; declared so cobra accepts it.
	root.PersistentFlags().String("config", "", "Config file (.yaml, .yml or .toml); defaults to $WORKLOAD_CONFIG")

	root.AddCommand(
		newWorkerCmd(app),
		newCapacityCmd(app),
		newPlanCmd(app),
		newManualCmd(app),
		newBlockCmd(app),
		newTaskCmd(app),
		newCommitmentsCmd(app),
		newSchemaCmd(),
		newServeMetricsCmd(app),
	)

	return root
}
