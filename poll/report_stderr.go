package poll

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

var stderrMu sync.Mutex

func reportPanicToStderr(name string, seq uint64, v any, stack []byte) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "poll: panic")
	if name != "" {
		fmt.Fprintf(&buf, " name=%q", name)
	}
	fmt.Fprintf(&buf, " seq=%d value=%v\n", seq, v)
	if len(stack) > 0 {
		_, _ = buf.Write(stack)
		if stack[len(stack)-1] != '\n' {
			_ = buf.WriteByte('\n')
		}
	}

	stderrMu.Lock()
	_, _ = os.Stderr.Write(buf.Bytes())
	stderrMu.Unlock()
}
