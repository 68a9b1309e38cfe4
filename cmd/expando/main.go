package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"

	"github.com/sambeau/expando/pkg/expando/ast"
	perrors "github.com/sambeau/expando/pkg/expando/errors"
	"github.com/sambeau/expando/pkg/expando/expando"
	"github.com/sambeau/expando/pkg/expando/render"
)

// Version is set at compile time via -ldflags
var Version = "0.3.1"

// DefaultFormat is used when no format string is given.
const DefaultFormat = "%t%-20.20n %8s %5C %<N?N& > %<1m?%D&%-12D>"

var (
	// Display flags
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")

	// Mode flags
	checkFlag = flag.Bool("check", false, "Check syntax without rendering")
	treeFlag  = flag.Bool("tree", false, "Dump the parsed tree")

	// Rendering flags
	evalFlag     = flag.String("e", "", "Format string to render")
	evalLongFlag = flag.String("eval", "", "Format string to render")
	fileFlag     = flag.String("f", "", "Render one line per item from a YAML file")
	fileLongFlag = flag.String("file", "", "Render one line per item from a YAML file")
	widthFlag    = flag.Int("w", 80, "Column budget")
	widthLong    = flag.Int("width", 80, "Column budget")
	localeFlag   = flag.String("locale", "en_US", "Locale for date formatting")
	nowFlag      = flag.String("now", "", "Override the clock for relative-date conditions")
)

func main() {
	flag.Usage = printHelp
	flag.Parse()

	log := expando.DefaultLogger

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag || *versionLongFlag {
		fmt.Printf("expando version %s\n", Version)
		os.Exit(0)
	}

	if *nowFlag != "" {
		t, err := dateparse.ParseLocal(*nowFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: bad --now value %q: %v\n", *nowFlag, err)
			os.Exit(2)
		}
		render.Now = func() time.Time { return t }
	}

	width := *widthFlag
	if *widthLong != 80 {
		width = *widthLong
	}

	switch {
	case *checkFlag:
		if len(flag.Args()) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --check requires at least one format string")
			os.Exit(2)
		}
		os.Exit(checkFormats(log, flag.Args()))
	case *treeFlag:
		if len(flag.Args()) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --tree requires a format string")
			os.Exit(2)
		}
		os.Exit(dumpTree(log, flag.Args()[0]))
	default:
		format := DefaultFormat
		switch {
		case *evalFlag != "":
			format = *evalFlag
		case *evalLongFlag != "":
			format = *evalLongFlag
		case len(flag.Args()) > 0:
			format = flag.Args()[0]
		}
		os.Exit(renderItems(log, format, width))
	}
}

// checkFormats parses each format string and reports errors. Exit
// status is the number of bad formats, capped like a shell status.
func checkFormats(log expando.Logger, formats []string) int {
	bad := 0
	for _, f := range formats {
		if _, err := expando.Parse(f, itemDefs); err != nil {
			bad++
			if ee, ok := err.(*perrors.ExpandoError); ok {
				log.LogLine(f+":", ee.PrettyString())
			} else {
				log.LogLine(f+":", err)
			}
			continue
		}
		log.LogLine(f + ": ok")
	}
	if bad > 125 {
		bad = 125
	}
	return bad
}

// dumpTree prints the parsed node tree, one node per line.
func dumpTree(log expando.Logger, format string) int {
	exp, err := expando.Parse(format, itemDefs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	dumpNode(log, exp.Root, 0)
	return 0
}

func dumpNode(log expando.Logger, node ast.Node, depth int) {
	if node == nil {
		return
	}
	indent := strings.Repeat("  ", depth)

	switch n := node.(type) {
	case *ast.ContainerNode:
		log.LogLine(indent + "container")
		for _, child := range n.Children {
			dumpNode(log, child, depth+1)
		}
	case *ast.ConditionalNode:
		log.LogLine(indent + "conditional")
		dumpNode(log, n.Condition, depth+1)
		if n.IfTrue != nil {
			log.LogLine(indent + "  true:")
			dumpNode(log, n.IfTrue, depth+2)
		}
		if n.IfFalse != nil {
			log.LogLine(indent + "  false:")
			dumpNode(log, n.IfFalse, depth+2)
		}
	case *ast.PaddingNode:
		log.LogLine(fmt.Sprintf("%spadding %q", indent, n.Char))
		if n.Left != nil {
			log.LogLine(indent + "  left:")
			dumpNode(log, n.Left, depth+2)
		}
		if n.Right != nil {
			log.LogLine(indent + "  right:")
			dumpNode(log, n.Right, depth+2)
		}
	default:
		log.LogLine(fmt.Sprintf("%s%s %q", indent, node.Kind(), node.String()))
	}
}

// renderItems renders one line per item with the given format.
func renderItems(log expando.Logger, format string, width int) int {
	exp, err := expando.Parse(format, itemDefs)
	if err != nil {
		if ee, ok := err.(*perrors.ExpandoError); ok {
			fmt.Fprintln(os.Stderr, ee.PrettyString())
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}

	reg := newItemRegistry(monday.Locale(*localeFlag))
	if err := expando.Validate(itemDefs, reg); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	items := sampleItems()
	file := *fileFlag
	if file == "" {
		file = *fileLongFlag
	}
	if file != "" {
		items, err = loadItems(file)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 1
		}
	}

	for _, item := range items {
		log.LogLine(exp.Render(reg, item, width))
	}
	return 0
}

func printHelp() {
	fmt.Printf(`expando - format-string template engine version %s

Usage:
  expando [options] [FORMAT]          Render sample items with FORMAT
  expando --check FORMAT...           Check format syntax
  expando --tree FORMAT               Dump the parsed tree

Options:
  -e, --eval FORMAT  Format string to render
  -f, --file FILE    Render items from a YAML file
  -w, --width N      Column budget (default 80)
  --locale LOCALE    Locale for date fields (default en_US)
  --now DATE         Override the clock for relative-date conditions
  -h, --help         Show this help
  -V, --version      Show version

Format strings:
  %%n %%s %%C %%N %%t %%D         item fields (see --check output)
  %%-10n                      pad/justify: [-|=][0][min][.max]
  %%<N?new&old>               conditional on a field
  %%<3d?recent&old>           conditional on "newer than 3 days"
                             (d is condition-only; %%D prints the date)
  %%|- %%>. %%*.                 padding: fill, hard, soft

Examples:
  expando '%%-20n %%8s %%<1w?%%D>'
  expando --check '%%<N?yes&no>' '%%bogus'
  expando -f folders.yaml -w 100
`, Version)
}
