package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

const (
	defaultInboundQueueSize = 256
	defaultInboundWorkers   = 4
)

// Manager owns adapter connections and feeds inbound messages to the
// processor through a bounded worker pool.
type Manager struct {
	processor InboundProcessor
	adapters  map[Type]Adapter
	senders   map[Type]Sender
	receivers map[Type]Receiver
	logger    *slog.Logger

	inboundQueue   chan inboundTask
	inboundWorkers int
	inboundOnce    sync.Once
	inboundCtx     context.Context
	inboundCancel  context.CancelFunc
	workers        sync.WaitGroup

	adapterMu   sync.RWMutex
	mu          sync.Mutex
	connections map[Type]Connection
}

type inboundTask struct {
	ctx context.Context
	msg InboundMessage
}

func NewManager(log *slog.Logger, processor InboundProcessor) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		processor:      processor,
		adapters:       map[Type]Adapter{},
		senders:        map[Type]Sender{},
		receivers:      map[Type]Receiver{},
		connections:    map[Type]Connection{},
		logger:         log.With(slog.String("component", "channel")),
		inboundQueue:   make(chan inboundTask, defaultInboundQueueSize),
		inboundWorkers: defaultInboundWorkers,
	}
}

func (m *Manager) RegisterAdapter(adapter Adapter) {
	if adapter == nil {
		return
	}
	ct := normalizeType(adapter.Type())
	m.adapterMu.Lock()
	m.adapters[ct] = adapter
	if sender, ok := adapter.(Sender); ok {
		m.senders[ct] = sender
	}
	if receiver, ok := adapter.(Receiver); ok {
		m.receivers[ct] = receiver
	}
	m.adapterMu.Unlock()
	m.logger.Info("adapter registered", slog.String("channel", ct.String()))
}

// Start launches the inbound workers and connects every registered receiver.
// Connection failures are returned together; receivers that did connect keep running.
func (m *Manager) Start(ctx context.Context) error {
	m.logger.Info("manager start")
	m.startInboundWorkers(ctx)

	m.adapterMu.RLock()
	receivers := make(map[Type]Receiver, len(m.receivers))
	for ct, r := range m.receivers {
		receivers[ct] = r
	}
	m.adapterMu.RUnlock()

	var errs []error
	for ct, receiver := range receivers {
		conn, err := receiver.Connect(ctx, m.HandleInbound)
		if err != nil {
			m.logger.Error("adapter start failed", slog.String("channel", ct.String()), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("connect %s: %w", ct, err))
			continue
		}
		m.mu.Lock()
		m.connections[ct] = conn
		m.mu.Unlock()
		m.logger.Info("adapter started", slog.String("channel", ct.String()))
	}
	return errors.Join(errs...)
}

// Shutdown stops all connections and waits for in-flight inbound work.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	conns := m.connections
	m.connections = map[Type]Connection{}
	m.mu.Unlock()

	var errs []error
	for ct, conn := range conns {
		if conn == nil {
			continue
		}
		if err := conn.Stop(ctx); err != nil && !errors.Is(err, ErrStopNotSupported) {
			errs = append(errs, fmt.Errorf("stop %s: %w", ct, err))
		}
	}
	if m.inboundCancel != nil {
		m.inboundCancel()
	}

	done := make(chan struct{})
	go func() {
		m.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}
	m.logger.Info("manager stop")
	return errors.Join(errs...)
}

// Send delivers msg through the sender registered for channelType.
func (m *Manager) Send(ctx context.Context, channelType Type, msg OutboundMessage) error {
	m.adapterMu.RLock()
	sender := m.senders[normalizeType(channelType)]
	m.adapterMu.RUnlock()
	if sender == nil {
		return fmt.Errorf("unsupported channel type: %s", channelType)
	}
	if strings.TrimSpace(msg.Target) == "" {
		return errors.New("target is required")
	}
	if msg.IsEmpty() {
		return errors.New("message is required")
	}
	return sender.Send(ctx, msg)
}

// HandleInbound enqueues an inbound message for asynchronous processing by the worker pool.
func (m *Manager) HandleInbound(ctx context.Context, msg InboundMessage) error {
	if m.processor == nil {
		return errors.New("inbound processor not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	m.startInboundWorkers(ctx)
	if m.inboundCtx != nil && m.inboundCtx.Err() != nil {
		return errors.New("inbound dispatcher stopped")
	}
	task := inboundTask{
		ctx: context.WithoutCancel(ctx),
		msg: msg,
	}
	select {
	case m.inboundQueue <- task:
		return nil
	default:
		return errors.New("inbound queue full")
	}
}

func (m *Manager) handleInbound(ctx context.Context, msg InboundMessage) error {
	sender := &replySender{manager: m, channelType: msg.Channel, target: msg.ReplyTarget}
	return m.processor.HandleInbound(ctx, msg, sender)
}

func (m *Manager) startInboundWorkers(ctx context.Context) {
	m.inboundOnce.Do(func() {
		workerCtx := ctx
		if workerCtx == nil {
			workerCtx = context.Background()
		}
		m.inboundCtx, m.inboundCancel = context.WithCancel(workerCtx)
		for i := 0; i < m.inboundWorkers; i++ {
			m.workers.Add(1)
			go m.runInboundWorker(m.inboundCtx)
		}
	})
}

func (m *Manager) runInboundWorker(ctx context.Context) {
	defer m.workers.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-m.inboundQueue:
			if err := m.handleInbound(task.ctx, task.msg); err != nil {
				m.logger.Error("inbound processing failed", slog.String("channel", task.msg.Channel.String()), slog.Any("error", err))
			}
		}
	}
}

// replySender binds outbound messages to the conversation of an inbound message.
type replySender struct {
	manager     *Manager
	channelType Type
	target      string
}

func (s *replySender) Send(ctx context.Context, msg OutboundMessage) error {
	if strings.TrimSpace(msg.Target) == "" {
		msg.Target = s.target
	}
	return s.manager.Send(ctx, s.channelType, msg)
}

func normalizeType(ct Type) Type {
	return Type(strings.ToLower(strings.TrimSpace(ct.String())))
}
