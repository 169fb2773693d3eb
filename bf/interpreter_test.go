package bf_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MarcinKonowalczyk/bfvm/bf"
	"github.com/MarcinKonowalczyk/bfvm/utils"
	"github.com/containerd/errdefs"
)

const (
	helloWorld1 = ">+++++++++[<++++++++>-]<.>+++++++[<++++>-]<+.+++++++..+++.[-]>++++++++[<++++>-] <.>+++++++++++[<++++++++>-]<-.--------.+++.------.--------.[-]>++++++++[<++++>- ]<+.[-]++++++++++."
	helloWorld2 = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."
	fibonacci   = ">++++++++++>+>+[[+++++[>++++++++<-]>.<++++++[>--------<-]+<<<]>.>>[[-]<[>+<-]>>[<<+>+>-]<[>+<-[>+<-[>+<-[>+<-[>+<-[>+<-[>+<-[>+<-[>+<-[>[-]>+>+<<<-[>+<-]]]]]]]]]]]+>>>]<<<]"
)

func newInterpreter(source string, opts ...bf.Option) *bf.Interpreter {
	opts = append([]bf.Option{bf.WithStdin(nil)}, opts...)
	return bf.NewInterpreter(bf.Compile(source), opts...)
}

func TestInterpreter_Empty(t *testing.T) {
	interpreter := newInterpreter("")
	out, err := interpreter.Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, out, "")
	utils.AssertEqual(t, interpreter.MemoryLength(), 1)
}

func TestInterpreter_Increment(t *testing.T) {
	interpreter := newInterpreter("+")
	utils.AssertEqual(t, interpreter.At(0), 0)
	_, err := interpreter.Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, interpreter.At(0), 1)
}

func TestInterpreter_Decrement(t *testing.T) {
	interpreter := newInterpreter("-")
	_, err := interpreter.Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, interpreter.At(0), 255)
}

func TestInterpreter_IncrementWraps(t *testing.T) {
	for _, source := range []string{strings.Repeat("+", 256), strings.Repeat("-", 256)} {
		interpreter := newInterpreter(source)
		_, err := interpreter.Run()
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, interpreter.At(0), 0)
	}
	interpreter := newInterpreter(strings.Repeat("+", 257))
	_, _ = interpreter.Run()
	utils.AssertEqual(t, interpreter.At(0), 1)
}

func TestInterpreter_MoveRight(t *testing.T) {
	interpreter := newInterpreter(">+")
	utils.AssertEqual(t, interpreter.MemoryLength(), 1)
	_, err := interpreter.Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, interpreter.At(0), 0)
	utils.AssertEqual(t, interpreter.At(1), 1)
	utils.AssertEqual(t, interpreter.MemoryLength(), 2)
}

func TestInterpreter_MoveLeftAtStart(t *testing.T) {
	interpreter := newInterpreter("<<+")
	_, err := interpreter.Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, interpreter.Pointer(), 0)
	utils.AssertEqual(t, interpreter.MemoryLength(), 1)
	utils.AssertEqual(t, interpreter.At(0), 1)
}

func TestInterpreter_TapeGrowth(t *testing.T) {
	interpreter := newInterpreter(">>><<>>>><<<<<<<<>")
	prev := interpreter.MemoryLength()
	for !interpreter.Done() {
		utils.AssertNoError(t, interpreter.Step())
		length := interpreter.MemoryLength()
		utils.AssertEqual(t, length, max(prev, interpreter.Pointer()+1))
		prev = length
	}
	utils.AssertEqual(t, interpreter.MemoryLength(), 6)
	utils.AssertEqual(t, interpreter.Pointer(), 1)
}

func TestInterpreter_Loop(t *testing.T) {
	interpreter := newInterpreter("+++[->+<]")
	_, err := interpreter.Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, interpreter.At(0), 0)
	utils.AssertEqual(t, interpreter.At(1), 3)
	utils.AssertEqual(t, interpreter.Depth(), 0)
}

func TestInterpreter_LoopDepth(t *testing.T) {
	interpreter := newInterpreter("++[>++[>+<-]<-]")
	deepest := 0
	for !interpreter.Done() {
		utils.AssertNoError(t, interpreter.Step())
		deepest = max(deepest, interpreter.Depth())
	}
	utils.AssertEqual(t, deepest, 2)
	utils.AssertEqual(t, interpreter.Depth(), 0)
	utils.AssertEqual(t, interpreter.At(2), 4)
}

func TestInterpreter_SkippedLoop(t *testing.T) {
	interpreter := newInterpreter("[>+.[+]<,]+")
	out, err := interpreter.Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, out, "")
	utils.AssertEqual(t, interpreter.MemoryLength(), 1)
	utils.AssertEqual(t, interpreter.At(0), 1)
}

func TestInterpreter_HelloWorld(t *testing.T) {
	out, err := newInterpreter(helloWorld1).Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, out, "Hello world!\n")

	out, err = newInterpreter(helloWorld2).Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, out, "Hello World!\n")
}

func TestInterpreter_CommentsDoNotChangeBehaviour(t *testing.T) {
	commented := "hello: " + strings.Join(strings.Split(helloWorld2, ""), " \n")
	out, err := newInterpreter(commented).Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, out, "Hello World!\n")
}

func TestInterpreter_Input(t *testing.T) {
	out, err := newInterpreter(",>,>,.<.<.", bf.WithInput("abc")).Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, out, "cba")
}

func TestInterpreter_InputFallsBackToStdin(t *testing.T) {
	interpreter := newInterpreter(",.,.,.",
		bf.WithInput("a"),
		bf.WithStdin(strings.NewReader("b")),
	)
	out, err := interpreter.Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, out, "ab\x00")
}

func TestInterpreter_InputEOFOverwritesCell(t *testing.T) {
	interpreter := newInterpreter("+++,", bf.WithStdin(strings.NewReader("")))
	_, err := interpreter.Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, interpreter.At(0), 0)
}

func TestInterpreter_OutputStreams(t *testing.T) {
	var buf bytes.Buffer
	out, err := newInterpreter(helloWorld1, bf.WithOutput(&buf)).Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, buf.String(), out)
}

func TestInterpreter_OutputHighByte(t *testing.T) {
	out, err := newInterpreter(strings.Repeat("+", 200) + ".").Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, out, string(rune(200)))
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestInterpreter_OutputWriteError(t *testing.T) {
	_, err := newInterpreter("+.", bf.WithOutput(failingWriter{})).Run()
	utils.AssertError(t, err)
}

func TestInterpreter_UnbalancedClose(t *testing.T) {
	out, err := newInterpreter("+.]+.").Run()
	utils.AssertEqual(t, out, "\x01")
	utils.AssertErrorIs(t, err, errdefs.ErrInvalidArgument)

	var loopErr *bf.UnbalancedLoopError
	utils.Assert(t, errors.As(err, &loopErr), "expected an UnbalancedLoopError")
	utils.AssertEqual(t, loopErr.Pos, 3)
	utils.AssertEqual(t, loopErr.Bracket, bf.LoopEnd)
}

func TestInterpreter_UnbalancedCloseAfterSkip(t *testing.T) {
	_, err := newInterpreter("[]  ]").Run()
	var loopErr *bf.UnbalancedLoopError
	utils.Assert(t, errors.As(err, &loopErr), "expected an UnbalancedLoopError")
	utils.AssertEqual(t, loopErr.Pos, 5)
}

func TestInterpreter_UnbalancedOpen(t *testing.T) {
	_, err := newInterpreter("..[[]").Run()
	var loopErr *bf.UnbalancedLoopError
	utils.Assert(t, errors.As(err, &loopErr), "expected an UnbalancedLoopError")
	utils.AssertEqual(t, loopErr.Pos, 3)
	utils.AssertEqual(t, loopErr.Bracket, bf.LoopStart)
	utils.Assert(t, strings.Contains(err.Error(), "char 3"), err.Error())
}

func TestInterpreter_EnteredOpenLoopAtEnd(t *testing.T) {
	// brackets are only checked when reached, an entered loop may run off the end
	interpreter := newInterpreter("+[")
	_, err := interpreter.Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, interpreter.Depth(), 1)
}

func TestInterpreter_Reset(t *testing.T) {
	interpreter := newInterpreter(",>,>,.<.<.", bf.WithInput("xyz"))
	first, err := interpreter.Run()
	utils.AssertNoError(t, err)
	interpreter.Reset()
	utils.AssertEqual(t, interpreter.MemoryLength(), 1)
	utils.AssertEqual(t, interpreter.Output(), "")
	second, err := interpreter.Run()
	utils.AssertNoError(t, err)
	utils.AssertEqual(t, first, "zyx")
	utils.AssertEqual(t, second, first)
}

func TestInterpreter_StepAfterDone(t *testing.T) {
	interpreter := newInterpreter("+")
	utils.AssertNoError(t, interpreter.Step())
	utils.Assert(t, interpreter.Done(), "expected program to be done")
	utils.AssertNoError(t, interpreter.Step())
	utils.AssertEqual(t, interpreter.PC(), 1)
	utils.AssertEqual(t, interpreter.At(0), 1)
}

func TestInterpreter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newInterpreter("+[]").RunContext(ctx)
	utils.AssertErrorIs(t, err, context.Canceled)
}

func TestInterpreter_Fibonacci(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newInterpreter(fibonacci).RunContext(ctx)
	utils.AssertErrorIs(t, err, context.DeadlineExceeded)
}
