package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	successColorFG = pterm.FgLightGreen
	successStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	warnColorFG    = pterm.FgYellow
	warnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	errorColorFG   = pterm.FgRed
	errorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	infoColorFG    = successColorFG
)

// PrintErrorMessage prints a standard Go error to the console.
func PrintErrorMessage(tag string, err error) {
	errorStyleBG.Print(tag)
	errorColorFG.Println(" " + err.Error())
}

// PrintInfoMessage prints an informational message to the user.
func PrintInfoMessage(tag, msg string) {
	successStyleBG.Print(tag)
	infoColorFG.Println(" " + msg)
}

// displayICE displays an internal compiler error message.
func displayICE(message string) {
	errorStyleBG.Print("Internal Compiler Error ")
	errorColorFG.Println(message)
	fmt.Print("This error was not supposed to happen: please open an issue on GitHub\n\n")
}

// displayFatal displays a fatal error message.
func displayFatal(message string) {
	errorStyleBG.Print("Fatal Error ")
	errorColorFG.Println(message)
	fmt.Println()
}

// displayCompileMessage displays a single compilation error or warning along
// with the source text it spans.
func displayCompileMessage(msg *Message) {
	label := "error"
	style := errorStyleBG
	if msg.IsWarning {
		label = "warning"
		style = warnStyleBG
	}

	if msg.Span == nil {
		style.Print(label)
		fmt.Printf(" %s: %s\n\n", msg.ReprPath, msg.Text)
		return
	}

	style.Print(label)
	fmt.Printf(" %s:%d:%d: %s\n\n",
		msg.ReprPath, msg.Span.StartLine+1, msg.Span.StartCol+1, msg.Text)
	displaySourceText(msg.AbsPath, msg.Span, msg.IsWarning)
}

// displaySourceText displays a segment of source text defined by a text span.
func displaySourceText(absPath string, span *TextSpan, isWarning bool) {
	file, err := os.Open(absPath)
	if err != nil {
		// The file may be synthetic (eg. test input); skip the excerpt.
		return
	}
	defer file.Close()

	// Collect all the source lines containing the given source text.
	var lines []string
	sc := bufio.NewScanner(file)
	for ln := 0; sc.Scan(); ln++ {
		if span.StartLine <= ln && ln <= span.EndLine {
			lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
		}
	}

	if sc.Err() != nil || len(lines) == 0 {
		return
	}

	carretColor := errorColorFG
	if isWarning {
		carretColor = warnColorFG
	}

	// Calculate the minimum line indentation so the excerpt can be trimmed.
	minIndent := math.MaxInt
	for _, line := range lines {
		lineIndent := 0
		for _, c := range line {
			if c == ' ' {
				lineIndent++
			} else {
				break
			}
		}

		if lineIndent < minIndent {
			minIndent = lineIndent
		}
	}

	maxLineNumLen := len(strconv.Itoa(span.EndLine + 1))
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	for i, line := range lines {
		infoColorFG.Printf(lineNumFmtStr, i+span.StartLine+1)
		fmt.Println(line[minIndent:])

		fmt.Print(strings.Repeat(" ", maxLineNumLen), " | ")

		// The number of spaces before carret underlining begins.  For any line
		// which is not the starting line, this is always zero since the
		// underlining is continuing from the previous line.
		var carretPrefixCount int
		if i == 0 {
			carretPrefixCount = span.StartCol - minIndent
		}

		// The number of characters at the end of the source line that should
		// not be underlined.  Only nonzero on the last line.
		var carretSuffixCount int
		if i == len(lines)-1 {
			carretSuffixCount = len(line) - span.EndCol - 1
		}

		carretCount := len(line) - carretSuffixCount - carretPrefixCount - minIndent
		if carretCount < 1 {
			carretCount = 1
		}

		fmt.Print(strings.Repeat(" ", carretPrefixCount))
		carretColor.Println(strings.Repeat("^", carretCount))
	}

	fmt.Println()
}

// -----------------------------------------------------------------------------

// phaseSpinner stores the current phase spinner.
var phaseSpinner *pterm.SpinnerPrinter
var currentPhase string
var phaseStartTime time.Time

const maxPhaseLength = len("Generating")

// ReportCompileHeader displays the compiler version and target information
// before compilation begins.
func ReportCompileHeader(version, target string) {
	fmt.Print("sable ")
	infoColorFG.Print("v" + version)
	fmt.Print(" -- target: ")
	infoColorFG.Println(target)
}

// ReportBeginPhase displays the beginning of a compilation phase.
func ReportBeginPhase(phase string) {
	currentPhase = phase
	phaseText := phase + "..." + strings.Repeat(" ", maxPhaseLength-len(phase)+2)
	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(infoColorFG))

	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: successStyleBG,
			Text:  "Done",
		},
	}

	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: errorStyleBG,
			Text:  "Fail",
		},
	}

	phaseSpinner.Start(phaseText)
	phaseStartTime = time.Now()
}

// ReportEndPhase displays the end of a compilation phase.
func ReportEndPhase(success bool) {
	if phaseSpinner != nil {
		if success {
			phaseSpinner.Success(
				currentPhase+strings.Repeat(" ", maxPhaseLength-len(currentPhase)+2),
				fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds()),
			)
		} else {
			phaseSpinner.Fail(currentPhase + strings.Repeat(" ", maxPhaseLength-len(currentPhase)+2))
		}

		phaseSpinner = nil
	}
}

// ReportCompilationFinished displays the closing compilation summary.
func ReportCompilationFinished(success bool, errorCount, warningCount int) {
	fmt.Print("\n")

	if success {
		successColorFG.Print("All done! ")
	} else {
		errorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")

	switch errorCount {
	case 0:
		successColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		errorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		errorColorFG.Print(errorCount)
		fmt.Print(" errors, ")
	}

	switch warningCount {
	case 0:
		successColorFG.Print(0)
		fmt.Println(" warnings)")
	case 1:
		warnColorFG.Print(1)
		fmt.Println(" warning)")
	default:
		warnColorFG.Print(warningCount)
		fmt.Println(" warnings)")
	}
}
