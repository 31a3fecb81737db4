package mqtt

import (
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/akatsukimed/dialyctl/internal/errors"
	"github.com/akatsukimed/dialyctl/internal/logger"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
	clientID       = "dialyctl"
)

// RealPublisher publishes to a live broker via paho. Connection is
// established lazily and retried automatically by the client.
type RealPublisher struct {
	client paho.Client
}

// NewRealPublisher creates a publisher for the given broker address
// (e.g. tcp://10.0.0.5:1883). The initial connect is asynchronous so a
// down broker never blocks daemon startup.
func NewRealPublisher(broker string) *RealPublisher {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(func(paho.Client) {
			logger.Info().Str("broker", broker).Msg("mqtt connected")
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn().Err(err).Msg("mqtt connection lost")
		})

	client := paho.NewClient(opts)
	client.Connect()

	return &RealPublisher{client: client}
}

func (p *RealPublisher) PublishStatus(status StatusEvent) error {
	payload, err := FormatStatusPayload(status)
	if err != nil {
		return errors.New().Wrap(errors.ErrPublishFailed, err)
	}

	return p.publish(Topic, payload, false)
}

func (p *RealPublisher) PublishAlarm(event AlarmEvent) error {
	payload, err := FormatAlarmPayload(event)
	if err != nil {
		return errors.New().Wrap(errors.ErrPublishFailed, err)
	}

	return p.publish(TopicAlarm, payload, true)
}

func (p *RealPublisher) publish(topic string, payload []byte, retained bool) error {
	if !p.client.IsConnected() {
		return errors.New().WithMessage(errors.ErrPublishFailed, "mqtt not connected")
	}

	token := p.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New().New(errors.ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return errors.New().Wrap(errors.ErrPublishFailed, err)
	}

	return nil
}

func (p *RealPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
