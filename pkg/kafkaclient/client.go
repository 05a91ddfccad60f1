package kafkaclient

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaWriter defines the interface for a Kafka message writer.
// This allows for easy mocking in unit tests.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer buffers messages and writes them from a single background
// goroutine so callers never block on the broker.
type KafkaProducer struct {
	writer KafkaWriter
	logger *zap.Logger
	// a channel to signal a graceful shutdown.
	doneChan chan struct{}
	// a wait group to ensure the publish loop has exited before Close.
	wg sync.WaitGroup
	// queued messages waiting for the publish loop.
	messageChan chan kafka.Message

	mu      sync.Mutex
	stopped bool
	dropped int
}

// NewKafkaProducer creates a producer for topic on broker. Messages queue up to
// bufferSize; beyond that Publish drops them.
func NewKafkaProducer(topic, broker string, bufferSize int, logger *zap.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newProducer(writer, bufferSize, logger)
}

func newProducer(writer KafkaWriter, bufferSize int, logger *zap.Logger) *KafkaProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &KafkaProducer{
		writer:      writer,
		logger:      logger,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message, bufferSize),
	}
}

// Publish enqueues a message without blocking. It reports false when the
// message was dropped because the buffer is full or the producer stopped.
func (kp *KafkaProducer) Publish(key, value []byte) bool {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	if kp.stopped {
		return false
	}
	select {
	case kp.messageChan <- kafka.Message{Key: key, Value: value, Time: time.Now()}:
		return true
	default:
		kp.dropped++
		kp.logger.Warn("kafka buffer full, dropping message", zap.Int("dropped", kp.dropped))
		return false
	}
}

// StartPublishing begins the write loop in a separate goroutine.
func (kp *KafkaProducer) StartPublishing(ctx context.Context) {
	kp.wg.Add(1)
	go func() {
		defer kp.wg.Done()
		kp.logger.Debug("starting kafka publish loop")

		for {
			select {
			case <-ctx.Done():
				kp.logger.Debug("context canceled, stopping publish loop")
				return
			case <-kp.doneChan:
				kp.drain(ctx)
				return
			case msg := <-kp.messageChan:
				kp.write(ctx, msg)
			}
		}
	}()
}

// drain flushes whatever was queued before Stop.
func (kp *KafkaProducer) drain(ctx context.Context) {
	for {
		select {
		case msg := <-kp.messageChan:
			kp.write(ctx, msg)
		default:
			return
		}
	}
}

func (kp *KafkaProducer) write(ctx context.Context, msg kafka.Message) {
	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		kp.logger.Warn("kafka write failed", zap.Error(err))
	}
}

// Stop flushes queued messages and closes the writer.
func (kp *KafkaProducer) Stop() {
	kp.mu.Lock()
	if kp.stopped {
		kp.mu.Unlock()
		return
	}
	kp.stopped = true
	kp.mu.Unlock()

	close(kp.doneChan)
	kp.wg.Wait()
	if err := kp.writer.Close(); err != nil {
		kp.logger.Warn("failed to close kafka writer", zap.Error(err))
	}
	kp.logger.Debug("kafka producer stopped")
}

// Dropped returns how many messages Publish discarded.
func (kp *KafkaProducer) Dropped() int {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	return kp.dropped
}
