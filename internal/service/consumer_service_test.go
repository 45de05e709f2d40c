package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-shopping-assistant-be/internal/dto"
	"ai-shopping-assistant-be/internal/entity"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/repository/memory"
	"ai-shopping-assistant-be/internal/repository/specification"
	"ai-shopping-assistant-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedEmbedding struct {
	vec []float32
	err error
}

func (f fixedEmbedding) Generate(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}
func (f fixedEmbedding) Dimensions() int { return len(f.vec) }
func (f fixedEmbedding) Name() string    { return "fixed" }

func newConsumer(factory unitofwork.RepositoryFactory, emb fixedEmbedding) *consumerService {
	return NewConsumerService(nil, "EMBED_PRODUCT", factory, emb, logger.NewNopLogger()).(*consumerService)
}

func embedMessage(t *testing.T, id uuid.UUID) *message.Message {
	t.Helper()
	payload := []byte(`{"product_id":"` + id.String() + `"}`)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func settled(msg *message.Message) string {
	select {
	case <-msg.Acked():
		return "ack"
	case <-msg.Nacked():
		return "nack"
	default:
		return "pending"
	}
}

func TestProcessMessageStoresEmbedding(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewRepositoryFactory(memory.NewStore())
	p := &entity.Product{Name: "Lamp", Category: "Home"}
	require.NoError(t, factory.NewUnitOfWork(ctx).ProductRepository().Create(ctx, p))

	msg := embedMessage(t, p.Id)
	newConsumer(factory, fixedEmbedding{vec: []float32{0.6, 0.8}}).processMessage(ctx, msg)

	assert.Equal(t, "ack", settled(msg))
	stored, err := factory.NewUnitOfWork(ctx).ProductRepository().FindOne(ctx, specification.ByID{ID: p.Id})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.6, 0.8}, stored.Embedding)
}

func TestProcessMessageSettlement(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewRepositoryFactory(memory.NewStore())
	p := &entity.Product{Name: "Lamp"}
	require.NoError(t, factory.NewUnitOfWork(ctx).ProductRepository().Create(ctx, p))

	tests := []struct {
		name string
		msg  *message.Message
		emb  fixedEmbedding
		want string
	}{
		{"unreadable payload", message.NewMessage(watermill.NewUUID(), []byte("{")), fixedEmbedding{vec: []float32{1}}, "ack"},
		{"deleted product", embedMessage(t, uuid.New()), fixedEmbedding{vec: []float32{1}}, "ack"},
		{"provider down", embedMessage(t, p.Id), fixedEmbedding{err: errors.New("503")}, "nack"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newConsumer(factory, tt.emb).processMessage(ctx, tt.msg)
			assert.Equal(t, tt.want, settled(tt.msg))
		})
	}
}

func TestConsumeThroughGoChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := memory.NewRepositoryFactory(memory.NewStore())
	p := &entity.Product{Name: "Kettle"}
	require.NoError(t, factory.NewUnitOfWork(ctx).ProductRepository().Create(ctx, p))

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	consumer := NewConsumerService(pubSub, "EMBED_PRODUCT", factory, fixedEmbedding{vec: []float32{1, 0}}, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	product := NewProductService(factory, nil, NewPublisherService("EMBED_PRODUCT", pubSub), logger.NewNopLogger(), ProductServiceConfig{})
	name := "Electric Kettle"
	_, err := product.Update(ctx, &dto.UpdateProductRequest{Id: p.Id, Name: &name})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		stored, err := factory.NewUnitOfWork(ctx).ProductRepository().FindOne(ctx, specification.ByID{ID: p.Id})
		return err == nil && len(stored.Embedding) == 2
	}, 2*time.Second, 10*time.Millisecond)
}
