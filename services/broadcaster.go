package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/repository"
	"github.com/akinalp/wordless/ws"
)

// ErrBroadcastFailed, en az bir bağlantıya "gone" dışında bir sebeple
// teslim edilemediğinde döner. Çağıran kendi hata koduna çevirir.
var ErrBroadcastFailed = errors.New("broadcast failed")

// BroadcastReport, bir fan-out'un sonuç özeti.
type BroadcastReport struct {
	Delivered int
	Gone      int
	Failed    int
}

// Broadcaster, bir event'i registry'deki bağlantılara dağıtır.
type Broadcaster interface {
	// Broadcast, event'i verilen bağlantılara paralel gönderir ve hepsinin
	// sonuçlanmasını bekler. Boş liste no-op'tur.
	//
	// "gone" bağlantılar arka planda registry'den silinir ve hata sayılmaz.
	// Diğer teslim hataları ErrBroadcastFailed ile raporlanır.
	Broadcast(ctx context.Context, conns []models.Connection, event ws.Event) (BroadcastReport, error)
	// BroadcastAll, registry'yi tarar ve event'i tüm bağlantılara gönderir.
	// Tarama hatası da ErrBroadcastFailed sayılır.
	BroadcastAll(ctx context.Context, event ws.Event) (BroadcastReport, error)
	// WaitCleanup, bekleyen stale bağlantı silme işlerinin bitmesini bekler.
	WaitCleanup()
}

type broadcaster struct {
	push            ws.PushChannel
	connRepo        repository.ConnectionRepository
	deliveryTimeout time.Duration
	cleanupTimeout  time.Duration

	cleanup sync.WaitGroup
}

// NewBroadcaster, constructor.
//
// deliveryTimeout: her bağlantının teslimatı için ayrı üst süre.
// cleanupTimeout: stale bağlantının registry'den silinmesi için üst süre.
func NewBroadcaster(push ws.PushChannel, connRepo repository.ConnectionRepository, deliveryTimeout, cleanupTimeout time.Duration) Broadcaster {
	return &broadcaster{
		push:            push,
		connRepo:        connRepo,
		deliveryTimeout: deliveryTimeout,
		cleanupTimeout:  cleanupTimeout,
	}
}

func (b *broadcaster) BroadcastAll(ctx context.Context, event ws.Event) (BroadcastReport, error) {
	conns, err := b.connRepo.ScanAll(ctx)
	if err != nil {
		return BroadcastReport{}, fmt.Errorf("%w: scan connections: %w", ErrBroadcastFailed, err)
	}
	return b.Broadcast(ctx, conns, event)
}

// Broadcast akışı:
//  1. Event bir kez encode edilir, aynı byte'lar her bağlantıya gider
//  2. Her bağlantı için kendi deliveryTimeout'u olan bir goroutine
//  3. Hepsi beklenir, sonuçlar sınıflandırılır
//  4. "gone" → fire-and-forget registry silme, diğer hatalar → ErrBroadcastFailed
func (b *broadcaster) Broadcast(ctx context.Context, conns []models.Connection, event ws.Event) (BroadcastReport, error) {
	var report BroadcastReport
	if len(conns) == 0 {
		return report, nil
	}

	data, err := b.push.Encode(event)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrBroadcastFailed, err)
	}

	outcomes := make([]error, len(conns))
	var wg sync.WaitGroup
	for i := range conns {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			dctx, cancel := context.WithTimeout(ctx, b.deliveryTimeout)
			defer cancel()
			outcomes[i] = b.push.PostToConnection(dctx, conns[i].ConnectionID, data)
		}(i)
	}
	wg.Wait()

	var failures []error
	for i, err := range outcomes {
		switch {
		case err == nil:
			report.Delivered++
		case errors.Is(err, ws.ErrConnectionGone):
			report.Gone++
			b.pruneStale(ctx, conns[i].ConnectionID)
		default:
			report.Failed++
			failures = append(failures, err)
		}
	}

	if len(failures) > 0 {
		log.Printf("[fanout] %s: delivered=%d gone=%d failed=%d",
			event.Op, report.Delivered, report.Gone, report.Failed)
		return report, fmt.Errorf("%w: %d of %d deliveries: %w",
			ErrBroadcastFailed, len(failures), len(conns), errors.Join(failures...))
	}
	return report, nil
}

// pruneStale, kopmuş bir bağlantıyı registry'den arka planda siler.
//
// İstek context'inin iptali silmeyi durdurmaz (WithoutCancel); silme kendi
// cleanupTimeout'u ile sınırlıdır. Hata sadece loglanır.
func (b *broadcaster) pruneStale(ctx context.Context, connectionID string) {
	b.cleanup.Add(1)
	go func() {
		defer b.cleanup.Done()

		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.cleanupTimeout)
		defer cancel()

		if err := b.connRepo.Delete(cctx, connectionID); err != nil {
			log.Printf("[fanout] failed to prune stale connection %s: %v", connectionID, err)
			return
		}
		log.Printf("[fanout] pruned stale connection %s", connectionID)
	}()
}

func (b *broadcaster) WaitCleanup() {
	b.cleanup.Wait()
}
