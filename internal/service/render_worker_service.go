// FILE: internal/service/render_worker_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"
	"pagecraft-be/internal/repository/unitofwork"
	"pagecraft-be/pkg/renderer"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IRenderWorkerService interface {
	Consume(ctx context.Context) error
}

type renderWorkerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	uowFactory   unitofwork.RepositoryFactory
	usageService IUsageService
	renderer     renderer.PageRenderer
}

func NewRenderWorkerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	usageService IUsageService,
	pageRenderer renderer.PageRenderer,
) IRenderWorkerService {
	return &renderWorkerService{
		pubSub:       pubSub,
		topicName:    topicName,
		uowFactory:   uowFactory,
		usageService: usageService,
		renderer:     pageRenderer,
	}
}

func (ws *renderWorkerService) Consume(ctx context.Context) error {
	messages, err := ws.pubSub.Subscribe(ctx, ws.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ws.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ws *renderWorkerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RenderJobMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal render job message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing generation job %s", payload.JobId)

	uow := ws.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.GenerationRepository().FindOne(ctx, specification.ByID{ID: payload.JobId})
	if err != nil {
		log.Printf("[ERROR] Failed to get job %s: %v", payload.JobId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if job == nil {
		log.Printf("[ERROR] Generation job not found: %s", payload.JobId)
		msg.Ack() // Job deleted? Ack.
		return
	}
	if job.IsTerminal() {
		// Redelivery of a job that already finished.
		msg.Ack()
		return
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: payload.UserId})
	if err != nil {
		log.Printf("[ERROR] Failed to get user %s: %v", payload.UserId, err)
		msg.Nack()
		return
	}
	if user == nil {
		log.Printf("[ERROR] User not found for job %s: %s", payload.JobId, payload.UserId)
		msg.Ack()
		return
	}

	apiKey := ""
	if user.ProviderAPIKey != nil {
		apiKey = *user.ProviderAPIKey
	}

	if err := uow.GenerationRepository().UpdateStatus(ctx, job.Id, string(entity.GenerationStatusRunning), ""); err != nil {
		log.Printf("[ERROR] Failed to mark job %s running: %v", job.Id, err)
		msg.Nack()
		return
	}

	// Resume from PagesCompleted so a redelivered job never re-renders or
	// re-bills pages it already finished.
	for page := job.PagesCompleted; page < job.PagesRequested; page++ {
		// 1. Advisory check before spending provider budget on the page
		quota, err := ws.usageService.CheckQuota(ctx, user.Id, 1)
		if err != nil {
			log.Printf("[ERROR] Quota check failed for job %s: %v", job.Id, err)
			msg.Nack()
			return
		}
		if !quota.Allowed {
			log.Printf("[INFO] Job %s stopped at page %d: insufficient points", job.Id, page)
			ws.finish(ctx, uow, job.Id, entity.GenerationStatusInsufficientPoints, "")
			msg.Ack()
			return
		}

		// 2. Render
		result, err := ws.renderer.RenderPage(ctx, &renderer.PageRequest{
			JobId:       job.Id,
			UserId:      user.Id,
			PageIndex:   page,
			Description: job.Description,
			APIKey:      apiKey,
		})
		if err != nil {
			log.Printf("[ERROR] Render failed for job %s page %d: %v", job.Id, page, err)
			ws.finish(ctx, uow, job.Id, entity.GenerationStatusFailed, err.Error())
			msg.Ack()
			return
		}

		// 3. Bill the completed page. The deduction inside is the
		// authoritative check; the advisory one above can be stale.
		billed, err := ws.usageService.ConsumeAndRecord(ctx, user.Id, 1,
			fmt.Sprintf("page generation: job %s page %d", job.Id, page+1),
			map[string]interface{}{
				"job_id":     job.Id.String(),
				"page_index": page,
				"bytes":      len(result.Content),
			},
		)
		if err != nil {
			log.Printf("[ERROR] Failed to bill job %s page %d: %v", job.Id, page, err)
			msg.Nack()
			return
		}
		if !billed.Ok {
			log.Printf("[INFO] Job %s stopped at page %d: %s", job.Id, page, billed.Message)
			ws.finish(ctx, uow, job.Id, entity.GenerationStatusInsufficientPoints, "")
			msg.Ack()
			return
		}

		if err := uow.GenerationRepository().IncrementPagesCompleted(ctx, job.Id); err != nil {
			log.Printf("[ERROR] Failed to record progress for job %s: %v", job.Id, err)
			msg.Nack()
			return
		}
	}

	ws.finish(ctx, uow, job.Id, entity.GenerationStatusCompleted, "")
	log.Printf("[SUCCESS] Generation job %s completed (%d pages)", job.Id, job.PagesRequested)
	msg.Ack()
}

func (ws *renderWorkerService) finish(ctx context.Context, uow unitofwork.UnitOfWork, jobId uuid.UUID, status entity.GenerationStatus, reason string) {
	if err := uow.GenerationRepository().UpdateStatus(ctx, jobId, string(status), reason); err != nil {
		log.Printf("[ERROR] Failed to mark job %s %s: %v", jobId, status, err)
	}
}
