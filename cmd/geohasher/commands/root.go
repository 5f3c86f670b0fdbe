package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"geohasher/internal/app"
	"geohasher/internal/domain"
	"geohasher/internal/geohash"
	"geohasher/internal/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Global flags
	configFile string

	dateFlag      string
	precisionFlag int
	digitsFlag    int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "geohasher [latitude longitude]",
	Short: "Compute the xkcd #426 geohash destination for a date",
	Long: `Geohasher combines a date, the most recent Dow Jones opening and your
current position into the day's geohash destination (https://xkcd.com/426/).

Only the integer part of the position matters, so 37.42 and 37 give the same result.
Pass latitude and longitude as arguments, or none to be prompted on stdin.

Examples:
  geohasher 37.421542 -122.085589
  geohasher --date 2005-05-26 37 -122
  geohasher`,
	Args:         validatePositionArgs,
	SilenceUsage: true,
	RunE:         runGeohash,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return executeArgs(os.Args[1:])
}

func executeArgs(args []string) error {
	rootCmd.SetArgs(positionalsLast(args))
	return rootCmd.Execute()
}

// positionalsLast moves positional arguments behind a "--" so that negative
// coordinates such as -122.08 are not parsed as shorthand flags.
func positionalsLast(args []string) []string {
	var flags, positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positionals = append(positionals, args[i+1:]...)
			i = len(args)
		case isNegativeNumber(arg) || !strings.HasPrefix(arg, "-") || arg == "-":
			positionals = append(positionals, arg)
		default:
			flags = append(flags, arg)
			if flagTakesValue(arg) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		}
	}
	if len(positionals) == 0 {
		return flags
	}
	return append(append(flags, "--"), positionals...)
}

func isNegativeNumber(arg string) bool {
	if !strings.HasPrefix(arg, "-") {
		return false
	}
	_, err := decimal.NewFromString(arg)
	return err == nil
}

// flagTakesValue reports whether arg is a known flag whose value is the next argument.
func flagTakesValue(arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}

	var f *pflag.Flag
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		f = rootCmd.Flags().Lookup(name)
		if f == nil {
			f = rootCmd.PersistentFlags().Lookup(name)
		}
	} else if name := strings.TrimPrefix(arg, "-"); len(name) == 1 {
		f = rootCmd.Flags().ShorthandLookup(name)
		if f == nil {
			f = rootCmd.PersistentFlags().ShorthandLookup(name)
		}
	}
	return f != nil && f.NoOptDefVal == ""
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "configs/config.yaml", "config file (defaults are used if missing)")

	rootCmd.Flags().StringVar(&dateFlag, "date", "", "date to hash as YYYY-MM-DD (default today, local time)")
	rootCmd.Flags().IntVar(&precisionFlag, "precision", 0, "fractional digits kept per offset (default from config)")
	rootCmd.Flags().IntVar(&digitsFlag, "digits", 0, "significant digits in the printed coordinates (default from config)")
}

func validatePositionArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != 2 {
		return fmt.Errorf("expected 0 arguments (enter latitude and longitude on stdin) or 2 (latitude longitude), got %d", len(args))
	}
	return nil
}

func runGeohash(cmd *cobra.Command, args []string) error {
	b := app.NewBootstrap()
	if err := b.Initialize(configFile); err != nil {
		return err
	}
	defer b.Shutdown()

	date := domain.DateOf(time.Now())
	if dateFlag != "" {
		d, err := domain.ParseDate(dateFlag)
		if err != nil {
			return err
		}
		date = d
	}

	digits := b.Config.Geohash.DisplayDigits
	if cmd.Flags().Changed("digits") {
		digits = digitsFlag
	}
	if digits <= 0 {
		return fmt.Errorf("%w: digits must be positive, got %d", domain.ErrInvalidInput, digits)
	}

	svc := b.Service
	if cmd.Flags().Changed("precision") {
		if precisionFlag <= 0 {
			return fmt.Errorf("%w: precision must be positive, got %d", domain.ErrInvalidInput, precisionFlag)
		}
		svc = service.NewGeohashService(b.Index, precisionFlag)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The fetch runs while the user types the position.
	pending := svc.StartFetch(ctx, date)

	var pos domain.Coordinate
	var err error
	if len(args) == 2 {
		pos, err = domain.ParseCoordinate(args[0], args[1])
	} else {
		pos, err = promptPosition(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Today's date: %s\n", date)

	res, err := svc.Resolve(ctx, pending, pos)
	if err != nil {
		return fmt.Errorf("geohash for %s: %w", date, err)
	}

	fmt.Fprintf(out, "Most recent Dow opening: %s\n", res.Opening.StringFixed(int32(geohash.Scale(res.Opening))))
	fmt.Fprintln(out, "Your geohash:")
	fmt.Fprintf(out, "%s %s\n", res.Destination.SimpleString(digits), res.Destination.MapsURL())
	return nil
}

func promptPosition(in io.Reader, out io.Writer) (domain.Coordinate, error) {
	scanner := bufio.NewScanner(in)

	readLine := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", errors.New("unexpected end of input")
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	lat, err := readLine("Enter latitude: ")
	if err != nil {
		return domain.Coordinate{}, err
	}
	lon, err := readLine("Enter longitude: ")
	if err != nil {
		return domain.Coordinate{}, err
	}
	return domain.ParseCoordinate(lat, lon)
}
