package compare

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/pokt-network/poktroll/pkg/polylog"

	logutil "github.com/buildwithgrove/versus/log"
	"github.com/buildwithgrove/versus/metrics"
	"github.com/buildwithgrove/versus/qos/jsonrpc"
)

// maxLineBytes bounds a single input line. Large eth_call payloads fit
// comfortably; anything bigger is drained, counted as a skipped line, and the
// run continues with the next line.
const maxLineBytes = 4 * 1024 * 1024

// oversizedPreviewLen is how much of an oversized line is kept for the
// skip diagnostic; the rest is discarded while draining.
const oversizedPreviewLen = 256

// broadcastItem is one numbered envelope delivered to every provider's queue.
type broadcastItem struct {
	seq      SequenceID
	envelope jsonrpc.Envelope
}

// Broadcaster reads raw request lines, parses them into envelopes, mints
// sequence ids, and delivers every numbered envelope to every provider's
// queue in identical order.
//
// Queue discipline: each provider gets its own queue with capacity equal to
// the run's maximum request count, so a bounded run can never lose an entry
// to a slow provider. If a queue is ever full regardless (a lagging
// provider), the send is dropped for that provider only and the gap is
// surfaced twice: counted here, and detected by the worker from the sequence
// id jump. Silent loss is not an option.
type Broadcaster struct {
	logger polylog.Logger

	// maxCount stops the run after this many successfully-parsed envelopes.
	maxCount int

	queues []chan broadcastItem

	// nextSeq is the single authoritative sequence counter for the run.
	// Only the Broadcaster mints sequence ids.
	nextSeq SequenceID

	sent        int
	skipped     int
	laggedDrops []int
}

func NewBroadcaster(logger polylog.Logger, numProviders, maxCount int) *Broadcaster {
	queues := make([]chan broadcastItem, numProviders)
	for i := range queues {
		queues[i] = make(chan broadcastItem, maxCount)
	}

	return &Broadcaster{
		logger:      logger.With("component", "broadcaster"),
		maxCount:    maxCount,
		queues:      queues,
		laggedDrops: make([]int, numProviders),
	}
}

// Queue returns the receive side of provider i's queue.
func (b *Broadcaster) Queue(i int) <-chan broadcastItem {
	return b.queues[i]
}

// Run consumes input line by line until EOF or maxCount parsed envelopes,
// then closes every queue so workers can drain and terminate.
//
// Malformed and oversized lines are logged and skipped: they advance neither
// the sequence counter nor the completion count. Only a genuine read failure
// on the input stream terminates the run.
func (b *Broadcaster) Run(input io.Reader) error {
	defer b.closeQueues()

	reader := bufio.NewReaderSize(input, 64*1024)

	var readErr error
	for b.sent < b.maxCount && readErr == nil {
		var line []byte
		var tooLong bool
		line, tooLong, readErr = nextLine(reader)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			break
		}

		if tooLong {
			b.skipped++
			metrics.ObserveSkippedLine()
			b.logger.Warn().
				Int("limit_bytes", maxLineBytes).
				Str("line_preview", logutil.Preview(string(line))).
				Msg("skipping oversized input line")
			continue
		}

		if len(line) == 0 && errors.Is(readErr, io.EOF) {
			// No trailing token after the final newline.
			break
		}

		envelope, err := jsonrpc.ParseEnvelope(line)
		if err != nil {
			b.skipped++
			metrics.ObserveSkippedLine()
			b.logger.Warn().
				Err(err).
				Str("line_preview", logutil.Preview(string(line))).
				Msg("skipping malformed input line")
			continue
		}

		b.nextSeq++
		b.deliver(broadcastItem{seq: b.nextSeq, envelope: envelope})
		b.sent++
	}

	b.logger.Info().
		Int("sent", b.sent).
		Int("max_count", b.maxCount).
		Int("skipped_lines", b.skipped).
		Msgf("sent %d/%d requests", b.sent, b.maxCount)

	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return readErr
	}
	return nil
}

// nextLine reads one newline-terminated line, tolerating lines longer than
// the reader's buffer. A line over maxLineBytes is drained to its newline and
// reported as tooLong, with only a short preview of its head retained.
func nextLine(reader *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, readErr := reader.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
		}

		if readErr == nil || !errors.Is(readErr, bufio.ErrBufferFull) {
			// Newline found or end of input: the line is complete.
			line = bytes.TrimRight(line, "\r\n")
		}
		if !tooLong && len(line) > maxLineBytes {
			tooLong = true
			line = line[:oversizedPreviewLen]
		}

		switch {
		case readErr == nil:
			return line, tooLong, nil
		case errors.Is(readErr, bufio.ErrBufferFull):
			// Still inside the same line: keep draining.
		default:
			return line, tooLong, readErr
		}
	}
}

// deliver pushes the item onto every provider queue. A full queue means that
// provider is lagging behind the bounded capacity; the drop is counted and
// logged, and the provider's worker will observe the sequence gap.
func (b *Broadcaster) deliver(item broadcastItem) {
	for i, queue := range b.queues {
		select {
		case queue <- item:
		default:
			b.laggedDrops[i]++
			b.logger.Warn().
				Uint64("sequence_id", uint64(item.seq)).
				Int("provider_index", i).
				Msg("provider queue full: dropping entry for lagging provider")
		}
	}
}

func (b *Broadcaster) closeQueues() {
	for _, queue := range b.queues {
		close(queue)
	}
}

// Sent returns the number of envelopes broadcast.
func (b *Broadcaster) Sent() int {
	return b.sent
}

// SkippedLines returns the number of malformed input lines.
func (b *Broadcaster) SkippedLines() int {
	return b.skipped
}

// LaggedDrops returns, per provider index, how many entries were dropped
// because that provider's queue was full.
func (b *Broadcaster) LaggedDrops() []int {
	return b.laggedDrops
}
