// cmd/root.go
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/plasma-qed/qed-core/qed"
	"github.com/plasma-qed/qed-core/qed/config"
	"github.com/plasma-qed/qed-core/qed/rng"
	"github.com/plasma-qed/qed-core/qed/stage"
)

var (
	configPath   string
	numSteps     int
	maxWorkers   int
	seed         int64
	logLevel     string
	numElectrons int
)

var rootCmd = &cobra.Command{
	Use:   "qed-pic",
	Short: "Standalone driver for the QED radiation-reaction and pair-production core",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a synthetic multi-species QED timestep loop",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		species, err := config.LoadSpeciesConfigs(configPath)
		if err != nil {
			logrus.Fatalf("Loading species config: %v", err)
		}
		logrus.Infof("Loaded %d species from %s", len(species), configPath)

		electrons := syntheticElectrons(numElectrons)
		photons := &qed.ParticleBlock{Dim: 3}
		fields := syntheticFields(numElectrons)

		key := rng.NewSimulationKey(seed)

		for _, sc := range species {
			if sc.RadiationModel == qed.RadiationNone {
				continue
			}
			mc, err := qed.NewMCRadiation(sc)
			if err != nil {
				logrus.Fatalf("Constructing MCRadiation for %s: %v", sc.Name, err)
			}
			for step := 0; step < numSteps; step++ {
				result := stage.RunRadiationStage(mc, electrons, fields, photons, key, maxWorkers)
				result.Report.Species = sc.Name
				result.Report.Print()
			}
		}

		logrus.Info("Run complete.")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "species.yaml", "Path to the species YAML configuration")
	runCmd.Flags().IntVar(&numSteps, "steps", 1, "Number of timesteps to run")
	runCmd.Flags().IntVar(&maxWorkers, "max-workers", stage.DefaultMaxWorkers, "Maximum worker goroutines per stage")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Master RNG seed")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().IntVar(&numElectrons, "particles", 1000, "Number of synthetic electrons to seed")

	rootCmd.AddCommand(runCmd)
}

// syntheticElectrons builds a demo electron population with a spread of
// momenta, standing in for particles the host PIC engine would otherwise
// supply; this driver exists to exercise the QED core end to end, not to
// model a real laser-plasma interaction.
func syntheticElectrons(n int) *qed.ParticleBlock {
	pb := &qed.ParticleBlock{Dim: 3}
	pb.Weight = make([]float64, n)
	pb.Charge = make([]int8, n)
	pb.Chi = make([]float64, n)
	pb.Tau = make([]float64, n)
	for d := 0; d < 3; d++ {
		pb.Pos[d] = make([]float64, n)
		pb.Mom[d] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		pb.Weight[i] = 1.0
		pb.Charge[i] = -1
		pb.Mom[0][i] = 100.0 + float64(i%50)
		pb.Tau[i] = -1
	}
	return pb
}

func syntheticFields(n int) *qed.FieldView {
	e := make([]float64, 3*n)
	b := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		e[i] = 0.01
		b[n+i] = 0.01
	}
	return &qed.FieldView{E: e, B: b, IpartRef: 0}
}
