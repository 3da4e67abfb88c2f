package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("rental-listing-service/nats-publisher")

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Publisher sends listing events as JSON with the trace context and a
// message id in the headers.
type Publisher struct {
	conn   *nats.Conn
	pub    msgPublisher
	logger *logger.Logger
}

func NewPublisher(url string, appLogger *logger.Logger, appName string) (*Publisher, error) {
	log := appLogger.Named("NATSPublisher")

	opts := []nats.Option{
		nats.Name(appName + "-events"),
		nats.Timeout(10 * time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATSPublisher: async error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("NATSPublisher: connection closed")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATSPublisher: disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATSPublisher: reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	log.Info("NATSPublisher: connected", zap.String("url", conn.ConnectedUrl()))
	return &Publisher{conn: conn, pub: conn, logger: log}, nil
}

// Publish is synchronous with respect to the client buffer only; delivery is
// not confirmed.
func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	ctx, span := tracer.Start(ctx, "NATS.Publish "+subject,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(attribute.String("messaging.system", "nats"), attribute.String("messaging.destination.name", subject)))
	defer span.End()

	payload, err := json.Marshal(data)
	if err != nil {
		span.SetStatus(codes.Error, "encode failed")
		return fmt.Errorf("encode %s event: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = payload
	msg.Header.Set(nats.MsgIdHdr, uuid.NewString())
	otel.GetTextMapPropagator().Inject(ctx, HeaderCarrier(msg.Header))

	if err := p.pub.PublishMsg(msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("NATSPublisher.Publish: sent", zap.String("subject", subject), zap.Int("bytes", len(payload)))
	return nil
}

// HeaderCarrier adapts nats.Header to a propagation.TextMapCarrier.
type HeaderCarrier nats.Header

func (c HeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c HeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c HeaderCarrier) Keys() []string {
	out := make([]string, 0, len(c))
	for name := range c {
		out = append(out, name)
	}
	return out
}

// Close flushes pending events before closing.
func (p *Publisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("NATSPublisher.Close: drain failed", zap.Error(err))
	}
	p.conn.Close()
}
