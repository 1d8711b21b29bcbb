package compiler

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	if err != nil {
		t.Fatalf("reading testdata/%s: %v", name, err)
	}
	return src
}

var scenarios = []string{
	"return_const.sy",
	"arith.sy",
	"short_circuit.sy",
	"while_sum.sy",
	"fib.sy",
	"global_array.sy",
	"partial_init.sy",
	"array_param.sy",
}

func TestCompileKoopaModeSucceeds(t *testing.T) {
	for _, name := range scenarios {
		t.Run(name, func(t *testing.T) {
			src := readTestdata(t, name)
			out, err := Compile(src, ModeKoopa)
			if err != nil {
				t.Fatalf("Compile(%s, ModeKoopa): %v", name, err)
			}
			if !strings.Contains(out, "fun @main") {
				t.Errorf("%s: expected a @main function in the emitted IR text", name)
			}
		})
	}
}

func TestCompileRISCVModeSucceeds(t *testing.T) {
	for _, name := range scenarios {
		t.Run(name, func(t *testing.T) {
			src := readTestdata(t, name)
			out, err := Compile(src, ModeRISCV)
			if err != nil {
				t.Fatalf("Compile(%s, ModeRISCV): %v", name, err)
			}
			if !strings.Contains(out, "main:") {
				t.Errorf("%s: expected a main: label in the emitted assembly", name)
			}
		})
	}
}

var (
	immOpcodeRegexp = regexp.MustCompile(`^\s*(addi|lw|sw)\b`)
	lastNumRegexp   = regexp.MustCompile(`(-?\d+)`)
)

func TestRISCVImmediatesInRange(t *testing.T) {
	for _, name := range scenarios {
		t.Run(name, func(t *testing.T) {
			src := readTestdata(t, name)
			out, err := Compile(src, ModeRISCV)
			if err != nil {
				t.Fatalf("Compile(%s, ModeRISCV): %v", name, err)
			}
			for _, line := range strings.Split(out, "\n") {
				if !immOpcodeRegexp.MatchString(line) {
					continue
				}
				nums := lastNumRegexp.FindAllString(line, -1)
				if len(nums) == 0 {
					continue
				}
				n, err := strconv.Atoi(nums[len(nums)-1])
				if err != nil {
					continue
				}
				if n < -2048 || n > 2047 {
					t.Errorf("%s: immediate %d out of 12-bit signed range in line %q", name, n, line)
				}
			}
		})
	}
}

var frameRegexp = regexp.MustCompile(`addi sp, sp, (-?\d+)`)

func TestRISCVFrameAdjustmentIs16ByteAligned(t *testing.T) {
	for _, name := range scenarios {
		t.Run(name, func(t *testing.T) {
			src := readTestdata(t, name)
			out, err := Compile(src, ModeRISCV)
			if err != nil {
				t.Fatalf("Compile(%s, ModeRISCV): %v", name, err)
			}
			for _, m := range frameRegexp.FindAllStringSubmatch(out, -1) {
				n, err := strconv.Atoi(m[1])
				if err != nil {
					continue
				}
				if n%16 != 0 {
					t.Errorf("%s: frame adjustment %d is not 16-byte aligned", name, n)
				}
			}
		})
	}
}

func TestIRTextRoundTrip(t *testing.T) {
	for _, name := range scenarios {
		t.Run(name, func(t *testing.T) {
			src := readTestdata(t, name)
			text, err := Compile(src, ModeKoopa)
			if err != nil {
				t.Fatalf("Compile(%s, ModeKoopa): %v", name, err)
			}
			prog, err := ParseText(text)
			if err != nil {
				t.Fatalf("%s: ParseText(emitted text) failed: %v", name, err)
			}
			again := EmitText(prog)
			if again != text {
				t.Errorf("%s: re-emitted text differs from the original:\n--- original ---\n%s\n--- re-emitted ---\n%s", name, text, again)
			}
		})
	}
}

func TestCompileRejectsMismatchedReturnType(t *testing.T) {
	_, err := Compile([]byte("int main() { return; }"), ModeKoopa)
	if err == nil {
		t.Fatal("expected an error: int function with a value-less return")
	}
}

func TestCompileRejectsSyntaxErrors(t *testing.T) {
	_, err := Compile([]byte("int main( { return 0; }"), ModeKoopa)
	if err == nil {
		t.Fatal("expected a parse error for malformed syntax")
	}
}
