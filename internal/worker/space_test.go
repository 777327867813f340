package worker

import (
	"testing"
	"time"

	"surge/internal/bytecode"
	"surge/internal/vm"
)

func newSpace() *Space {
	return &Space{queues: make(map[int32]*tupleQueue)}
}

func TestWriteReadRoundTrip(t *testing.T) {
	sp := newSpace()
	tuple := []vm.Value{vm.IntVal(42, -1)}
	if err := sp.Write(7, tuple); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, ok := sp.Read(7)
	if !ok {
		t.Fatal("Read: expected ok")
	}
	if len(got) != 1 || got[0].Int != 42 {
		t.Fatalf("Read: got %v, want [42]", got)
	}
}

func TestReadBlocksUntilWrite(t *testing.T) {
	sp := newSpace()
	done := make(chan []vm.Value, 1)
	go func() {
		v, ok := sp.Read(1)
		if !ok {
			t.Error("Read: expected ok")
		}
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("Read returned before any Write")
	case <-time.After(20 * time.Millisecond):
	}

	if err := sp.Write(1, []vm.Value{vm.IntVal(9, -1)}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	select {
	case v := <-done:
		if v[0].Int != 9 {
			t.Fatalf("got %v, want [9]", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Read never unblocked after Write")
	}
}

func TestTerminateUnblocksReaders(t *testing.T) {
	sp := newSpace()
	done := make(chan bool, 1)
	go func() {
		_, ok := sp.Read(3)
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	sp.Terminate()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected Read to report !ok after Terminate")
		}
	case <-time.After(time.Second):
		t.Fatal("Terminate did not unblock a pending Read")
	}
}

func TestTerminateClosesLateQueues(t *testing.T) {
	sp := newSpace()
	sp.Terminate()

	_, ok := sp.Read(99) // type never seen before Terminate
	if ok {
		t.Fatal("expected Read on a post-Terminate queue to report !ok")
	}
}

func TestStartRunsAndCapsThreadCount(t *testing.T) {
	b := bytecode.NewBuilder()
	b.Emit(bytecode.OpExit)
	b.SetEntryPoint(0)
	file, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	host, err := Start(file, vm.DefaultOptions(), 1000)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	done := make(chan struct{})
	go func() {
		host.Terminate()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Terminate did not return after capped worker pool exited")
	}
}
