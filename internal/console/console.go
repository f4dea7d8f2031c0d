// Package console provides a line-driven interactive session for building a
// drug list, running interaction checks and exporting the result.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ddi-checker/internal/domain"
	"github.com/ddi-checker/internal/report"
	"github.com/ddi-checker/internal/service"
)

const prompt = "ddi> "

// Suggester looks up drug names for a partial query.
type Suggester interface {
	Suggest(ctx context.Context, query string) ([]string, error)
}

// Console runs commands against one session.
type Console struct {
	session   *service.Session
	suggester Suggester
	format    report.Format
	reader    *bufio.Reader
	out       io.Writer
	logger    *logrus.Logger
}

// New creates a console reading commands from in. suggester may be nil.
func New(session *service.Session, suggester Suggester, format report.Format, in io.Reader, out io.Writer, logger *logrus.Logger) *Console {
	return &Console{
		session:   session,
		suggester: suggester,
		format:    format,
		reader:    bufio.NewReader(in),
		out:       out,
		logger:    logger,
	}
}

// Run reads and executes commands until quit or end of input. Command errors
// are printed and never end the loop.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "DDI checker console. Type 'help' for commands.")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(c.out, prompt)

		line, err := c.reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			quit, cmdErr := c.Execute(ctx, line)
			if cmdErr != nil {
				fmt.Fprintf(c.out, "Error: %s\n", describeError(cmdErr))
			}
			if quit {
				return nil
			}
		}

		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}
	}
}

// Execute runs a single command line. It reports whether the console should exit.
func (c *Console) Execute(ctx context.Context, line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}

	c.logger.WithField("command", args[0]).Debug("Console command")

	switch strings.ToLower(args[0]) {
	case "help", "?":
		c.showHelp()
	case "list", "ls":
		c.list()
	case "add":
		return false, c.add(strings.TrimSpace(strings.TrimPrefix(line, args[0])))
	case "remove", "rm":
		return false, c.remove()
	case "set":
		return false, c.set(args[1:])
	case "pediatric":
		return false, c.pediatric(args[1:])
	case "age":
		return false, c.patientNumber(args[1:], func(p *domain.PatientContext, v *float64) { p.Age = v })
	case "weight":
		return false, c.patientNumber(args[1:], func(p *domain.PatientContext, v *float64) { p.WeightKg = v })
	case "submit", "check":
		return false, c.submit(ctx)
	case "history":
		return false, c.history(ctx)
	case "export":
		return false, c.export(ctx, args[1:])
	case "suggest":
		return false, c.suggest(ctx, strings.Join(args[1:], " "))
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, type 'help'", args[0])
	}
	return false, nil
}

func (c *Console) showHelp() {
	help := `
Commands:
  add [name[:dose=100,unit=mg,freq=1,route=oral]]  Append a drug row
  remove                                          Remove the last row
  set <n> field=value ...                         Edit row n (name, dose, unit, freq, route)
  list                                            Show rows and patient attributes
  pediatric on|off                                Toggle pediatric mode
  age <years>|clear                               Set patient age
  weight <kg>|clear                               Set patient weight
  submit                                          Run the interaction check
  history                                         Show recent checks
  export csv|pdf [path]                           Save the displayed report
  suggest <text>                                  Look up drug names
  quit                                            Leave the console
`
	fmt.Fprintln(c.out, help)
}

func (c *Console) list() {
	entries := c.session.Entries()
	if len(entries) > 0 {
		fmt.Fprintf(c.out, "%-3s %-24s %-8s %-5s %-5s %s\n", "#", "Drug", "Dose", "Unit", "Freq", "Route")
	}
	for i, e := range entries {
		dose := "-"
		if e.Dose != nil {
			dose = strconv.FormatFloat(*e.Dose, 'f', -1, 64)
		}
		name := e.Name
		if strings.TrimSpace(name) == "" {
			name = "(empty)"
		}
		fmt.Fprintf(c.out, "%-3d %-24s %-8s %-5s %-5s %s\n", i+1, name, dose, e.Unit,
			strconv.FormatFloat(e.Freq, 'f', -1, 64), e.Route)
	}

	p := c.session.Patient()
	fmt.Fprintf(c.out, "Pediatric: %t  Age: %s  Weight: %s kg\n", p.IsPediatric, optional(p.Age), optional(p.WeightKg))
}

func (c *Console) add(spec string) error {
	var prefill []domain.DrugEntry
	if spec != "" {
		entry, err := ParseDrugSpec(spec)
		if err != nil {
			return err
		}
		prefill = append(prefill, entry)
	}

	var n int
	err := c.session.EditEntries(func(l *service.EntryList) error {
		l.Append(prefill...)
		n = l.Len()
		return nil
	})
	if err == nil {
		fmt.Fprintf(c.out, "Added row %d\n", n)
	}
	return err
}

func (c *Console) remove() error {
	return c.session.EditEntries(func(l *service.EntryList) error {
		if !l.RemoveLast() {
			return errors.New("at least one drug row must remain")
		}
		fmt.Fprintf(c.out, "Removed row %d\n", l.Len()+1)
		return nil
	})
}

func (c *Console) set(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: set <n> field=value ...")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid row %q", args[0])
	}

	return c.session.EditEntries(func(l *service.EntryList) error {
		entry, err := l.At(n - 1)
		if err != nil {
			return err
		}

		for _, arg := range args[1:] {
			key, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("invalid field %q: expected key=value", arg)
			}
			if err := ApplyField(&entry, key, value); err != nil {
				return err
			}
		}

		return l.Update(entry.ID, func(e *domain.DrugEntry) { *e = entry })
	})
}

func (c *Console) pediatric(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: pediatric on|off")
	}
	p := c.session.Patient()
	switch strings.ToLower(args[0]) {
	case "on", "yes", "true":
		p.IsPediatric = true
	case "off", "no", "false":
		p.IsPediatric = false
	default:
		return fmt.Errorf("invalid value %q, expected on or off", args[0])
	}
	c.session.SetPatient(p)
	return nil
}

func (c *Console) patientNumber(args []string, assign func(*domain.PatientContext, *float64)) error {
	if len(args) != 1 {
		return errors.New("expected one number or 'clear'")
	}
	p := c.session.Patient()
	if strings.EqualFold(args[0], "clear") {
		assign(&p, nil)
		c.session.SetPatient(p)
		return nil
	}
	v, err := parseNonNegative("value", args[0])
	if err != nil {
		return err
	}
	assign(&p, domain.Float(v))
	c.session.SetPatient(p)
	return nil
}

func (c *Console) submit(ctx context.Context) error {
	fmt.Fprintln(c.out, "Analyzing...")
	model, err := c.session.Submit(ctx)
	if err != nil {
		return err
	}
	if err := report.Write(c.out, model, c.format); err != nil {
		return err
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Recent checks:")
	return report.WriteHistory(c.out, c.session.History(), c.format)
}

func (c *Console) history(ctx context.Context) error {
	view := c.session.RefreshHistory(ctx)
	return report.WriteHistory(c.out, view, c.format)
}

func (c *Console) export(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: export csv|pdf [path]")
	}

	var (
		file *domain.ExportFile
		err  error
	)
	switch strings.ToLower(args[0]) {
	case "csv":
		file, err = c.session.ExportCSV(ctx)
	case "pdf":
		file, err = c.session.ExportPDF(ctx)
	default:
		return fmt.Errorf("unknown export format %q", args[0])
	}
	if err != nil {
		return err
	}

	path := file.Filename
	if len(args) == 2 {
		path = args[1]
	}
	if err := os.WriteFile(path, file.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(c.out, "Saved %s (%d bytes)\n", path, len(file.Data))
	return nil
}

func (c *Console) suggest(ctx context.Context, query string) error {
	if c.suggester == nil {
		return errors.New("suggestions are not available")
	}
	names, err := c.suggester.Suggest(ctx, query)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(c.out, "No matches")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(c.out, name)
	}
	return nil
}

// describeError returns the text shown to the user for a command error.
func describeError(err error) string {
	var re *domain.RequestError
	if errors.As(err, &re) {
		return re.UserMessage()
	}
	return err.Error()
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
