package errors

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Maximum number of frames to include on a stack trace.
const maxStackDepth = 64

var (
	goPath string
	goRoot string
)

func init() {
	goPath = os.Getenv("GOPATH")
	goRoot = runtime.GOROOT()
}

// StackFrame contains all necessary information about a specific line
// in a callstack.
type StackFrame struct {
	File           string `json:"filename,omitempty"`
	LineNumber     int    `json:"line_number,omitempty"`
	Function       string `json:"function,omitempty"`
	Package        string `json:"package,omitempty"`
	SourceLine     string `json:"source_line,omitempty"`
	ProgramCounter uintptr `json:"program_counter,omitempty"`
}

// Format implements fmt.Formatter for a single stack frame.
func (sf StackFrame) Format(s fmt.State, verb rune) {
	file := sf.File
	switch verb {
	case 'v':
		if s.Flag('+') {
			file = printFile(sf.File)
		}
		fallthrough
	case 's':
		str := fmt.Sprintf("%s:%d (0x%x)\n", file, sf.LineNumber, sf.ProgramCounter)
		_, _ = io.WriteString(s, str+fmt.Sprintf("\t%s: %s\n", sf.Function, sf.SourceLine))
	}
}

// getStack returns a formatted call stack, skipping `skip` additional
// frames beyond the caller of this function.
func getStack(skip int) []StackFrame {
	stack := make([]uintptr, maxStackDepth)
	length := runtime.Callers(2+skip, stack[:])
	cf := runtime.CallersFrames(stack[:length])

	i := 0
	frames := make([]StackFrame, length-1)
	for frame, more := cf.Next(); more; frame, more = cf.Next() {
		if i >= len(frames) {
			break
		}
		frames[i] = convertFrame(frame)
		i++
	}
	return frames[:i]
}

func convertFrame(rf runtime.Frame) StackFrame {
	pkg, fnc := packageAndName(rf.Function)
	return StackFrame{
		File:           rf.File,
		LineNumber:     rf.Line,
		Function:       fnc,
		Package:        pkg,
		SourceLine:     sourceLine(rf.File, rf.Line),
		ProgramCounter: rf.PC,
	}
}

func sourceLine(file string, line int) string {
	if line <= 0 {
		return "???"
	}
	sf, err := os.Open(filepath.Clean(file))
	if err != nil {
		return "???"
	}
	defer func() { _ = sf.Close() }()
	scanner := bufio.NewScanner(sf)
	currentLine := 1
	for scanner.Scan() {
		if currentLine == line {
			return string(bytes.Trim(scanner.Bytes(), " \t"))
		}
		currentLine++
	}
	return "???"
}

func packageAndName(fn string) (pkg string, name string) {
	name = fn
	if lastSlash := strings.LastIndex(name, "/"); lastSlash >= 0 {
		pkg += name[:lastSlash] + "/"
		name = name[lastSlash+1:]
	}
	if period := strings.Index(name, "."); period >= 0 {
		pkg += name[:period]
		name = name[period+1:]
	}
	name = strings.ReplaceAll(name, "·", ".")
	return pkg, name
}

func printFile(file string) string {
	if goRoot != "" {
		file = strings.Replace(file, goRoot, "GOROOT", 1)
	}
	if goPath != "" {
		file = strings.Replace(file, goPath, "GOPATH", 1)
	}
	return file
}
