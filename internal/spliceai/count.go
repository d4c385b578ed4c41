package spliceai

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// CountLines returns the number of lines in the file at path.
// A trailing line without a newline is counted.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open input for counting: %w", err)
	}
	defer f.Close()

	return countLines(f)
}

func countLines(r io.Reader) (int, error) {
	buf := make([]byte, 64*1024)
	count := 0
	last := byte('\n')
	for {
		n, err := r.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("count lines: %w", err)
		}
	}
	if last != '\n' {
		count++
	}
	return count, nil
}
