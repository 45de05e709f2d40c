package service

import (
	"context"
	"encoding/json"
	"errors"

	"ai-shopping-assistant-be/internal/dto"
	"ai-shopping-assistant-be/internal/pkg/logger"
	"ai-shopping-assistant-be/internal/repository/contract"
	"ai-shopping-assistant-be/internal/repository/specification"
	"ai-shopping-assistant-be/internal/repository/unitofwork"
	"ai-shopping-assistant-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage acks payloads that can never succeed and nacks the ones
// worth redelivering.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedProductMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Ingestion", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: payload.ProductId})
	if err != nil {
		cs.logger.Error("Ingestion", "Failed to load product", map[string]interface{}{
			"product_id": payload.ProductId.String(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}
	if product == nil {
		// deleted before we got to it
		msg.Ack()
		return
	}

	vec, err := cs.embeddingProvider.Generate(ctx, product.EmbeddingText())
	if err != nil {
		cs.logger.Error("Ingestion", "Failed to embed product", map[string]interface{}{
			"product_id": product.Id.String(),
			"provider":   cs.embeddingProvider.Name(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	if err := uow.ProductRepository().UpdateEmbedding(ctx, product.Id, vec); err != nil {
		if errors.Is(err, contract.ErrRecordNotFound) {
			msg.Ack()
			return
		}
		cs.logger.Error("Ingestion", "Failed to store embedding", map[string]interface{}{
			"product_id": product.Id.String(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info("Ingestion", "Product embedded", map[string]interface{}{
		"product_id": product.Id.String(),
		"dimensions": len(vec),
	})
	msg.Ack()
}
