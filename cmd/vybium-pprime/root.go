package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	vybiumnumtheory "github.com/vybium/vybium-numtheory/pkg/vybium-numtheory"
)

// newRootCmd builds the command tree. Prompts are read from in when --bits or
// --bases is neither given as a flag nor set in the environment.
func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	v := viper.New()
	prompt := bufio.NewReader(in)

	rootCmd := &cobra.Command{
		Use:   "vybium-pprime",
		Short: "Generate provable primes with a Pocklington certificate",
		Long: `Generate a prime P of at least the requested number of bits together with Q,
the large prime factor of (P-1)/2, by growing a random single-digit prime
one Pocklington-certified round at a time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := vybiumnumtheory.DefaultConfig()

			bits, err := intSetting(v, "bits", "Enter # of bits: ", prompt, out)
			if err != nil {
				return err
			}
			bases, err := intSetting(v, "bases", "Enter number of bases to try (1 to 8): ", prompt, out)
			if err != nil {
				return err
			}
			config.WithMinBits(bits).
				WithBases(bases).
				WithDigitBits(v.GetInt("digit-bits")).
				WithMaxBits(v.GetInt("max-bits"))
			if seed := v.GetString("seed"); seed != "" {
				config.WithSeed(v.GetString("hash"), seed)
			}

			logger := newLogger(v.GetBool("verbose"), errOut)
			defer func() { _ = logger.Sync() }()

			m := vybiumnumtheory.NewMetrics("vybium")
			reg := prometheus.NewRegistry()
			if err := m.Register(reg); err != nil {
				return err
			}

			g, err := vybiumnumtheory.NewGenerator(config,
				vybiumnumtheory.WithLogger(logger),
				vybiumnumtheory.WithMetrics(m))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			start := time.Now()
			p, err := g.Generate(ctx)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(out, "\n\nTook %s, %d bits\n", elapsed.Round(time.Microsecond), p.P.BitLen())
			fmt.Fprintf(out, "P == %s\n", p.P)
			fmt.Fprintf(out, "Q == %s\n", p.Q)

			if v.GetBool("certificate") {
				fmt.Fprint(out, p.Certificate)
			}
			if v.GetBool("verbose") {
				logger.Debug("search statistics", zap.Any("metrics", gatherCounts(reg)))
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "V", false, "log search progress to stderr")
	flags.Int("bits", 0, "minimum bit length of the prime")
	flags.Int("bases", 0, "number of Pocklington bases to try per candidate (1 to 8)")
	flags.String("seed", "", "hex seed for a reproducible hash-chain random source")
	flags.String("hash", "sha3", "hash for the seeded random source (sha3 or sha256)")
	flags.Int("digit-bits", vybiumnumtheory.DefaultConfig().DigitBits, "width of the single-digit primes (16 to 31)")
	flags.Int("max-bits", 0, "arithmetic capacity in bits (0 for the default)")
	flags.Bool("certificate", false, "print the primality certificate")

	for _, name := range []string{"verbose", "bits", "bases", "seed", "hash", "digit-bits", "max-bits", "certificate"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	v.SetEnvPrefix("vybium_pprime")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(newInvModCmd(out))
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd
}

// intSetting returns key from flags or the environment, prompting when neither sets it
func intSetting(v *viper.Viper, key, question string, in *bufio.Reader, out io.Writer) (int, error) {
	if v.IsSet(key) {
		return v.GetInt(key), nil
	}

	fmt.Fprintln(out, question)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(line), "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, strings.TrimSpace(line), err)
	}
	return n, nil
}

// newLogger returns a development logger in verbose mode and a warn-level
// production logger otherwise, both writing to w
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	var (
		encoder zapcore.Encoder
		level   zapcore.Level
	)
	if verbose {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		level = zapcore.DebugLevel
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		level = zapcore.WarnLevel
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core)
}

// gatherCounts flattens the registry into name/value pairs
func gatherCounts(reg *prometheus.Registry) map[string]float64 {
	counts := make(map[string]float64)
	families, err := reg.Gather()
	if err != nil {
		return counts
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				counts[mf.GetName()] += c.GetValue()
			}
		}
	}
	return counts
}
