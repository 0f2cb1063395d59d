package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chirp8/emu/audio"
	"chirp8/emu/clock"
	"chirp8/emu/cpu"
	"chirp8/emu/display"
	"chirp8/emu/screen"
)

var startCmd = &cobra.Command{
	Use:   "start `path/ROM`",
	Short: "load a ROM and start the emulator",
	Args:  cobra.ExactArgs(1),
	RunE:  start,
}

// chirp8 start path/to/rom.ch8 -c 540 -r 60
func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().IntP("clock", "c", 540, "target instruction rate in instructions per second")
	startCmd.Flags().IntP("refresh", "r", 60, "refresh and timer rate in Hz")
	startCmd.Flags().Float64P("scale", "s", 10, "window size multiplier per Chip-8 pixel")
	startCmd.Flags().Bool("mute", false, "disable the beeper")

	cobra.CheckErr(viper.BindPFlag("clock", startCmd.Flags().Lookup("clock")))
	cobra.CheckErr(viper.BindPFlag("refresh", startCmd.Flags().Lookup("refresh")))
	cobra.CheckErr(viper.BindPFlag("scale", startCmd.Flags().Lookup("scale")))
	cobra.CheckErr(viper.BindPFlag("mute", startCmd.Flags().Lookup("mute")))
}

func start(cmd *cobra.Command, args []string) error {
	romPath := args[0]

	fb := display.New()
	machine := cpu.New(fb)
	if err := machine.LoadROMFile(romPath); err != nil {
		return fmt.Errorf("starting emulator: %w", err)
	}

	clk, err := clock.New(viper.GetInt("clock"), viper.GetInt("refresh"))
	if err != nil {
		return fmt.Errorf("starting emulator: %w", err)
	}

	win, err := screen.New("chirp8 - "+filepath.Base(romPath), viper.GetFloat64("scale"))
	if err != nil {
		return fmt.Errorf("opening window: %w", err)
	}

	beeper, err := audio.NewBeeper(viper.GetBool("mute"))
	if err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}

	log.Printf("loaded %q, %d cycles per frame at %d Hz refresh",
		romPath, clk.CyclesPerFrame(), viper.GetInt("refresh"))

	return run(machine, clk, win, beeper)
}

// run is the driver loop: one batch of cycles, one timer tick, one
// frame and one input snapshot per refresh tick, until the window
// closes or the machine faults.
func run(machine *cpu.Machine, clk *clock.Clock, win *screen.Window, beeper *audio.Beeper) error {
	for !win.Closed() {
		machine.SetKeys(win.Keys())

		// a machine waiting on a key press burns no cycle budget
		for i := 0; i < clk.CyclesPerFrame() && !machine.Waiting(); i++ {
			if err := machine.Step(); err != nil {
				log.Printf("machine state at fault: %v", machine)
				return fmt.Errorf("emulation halted: %w", err)
			}
		}

		machine.TickTimers()
		win.Render(machine.FrameBuffer().Buffer())
		beeper.Set(machine.Beeping())
		clk.Throttle()
	}
	return nil
}
