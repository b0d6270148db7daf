package pipeline

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"statarb/internal/models"
)

// workers.go - ограниченный пул воркеров для per-pair статистики.
//
// Гарантии:
// - не более workers горутин одновременно;
// - результаты собираются в порядке отсортированных ключей пар,
//   независимо от порядка завершения воркеров (детерминированный merge);
// - сбой одной пары не влияет на остальные: fn возвращает ok=false,
//   пара просто выпадает из результата;
// - отмена контекста прекращает раздачу задач.

// pairResult - слот результата с сохранением позиции
type pairResult[T any] struct {
	value T
	ok    bool
}

// forEachPair выполняет fn для каждой пары на пуле воркеров.
// keys сортируются на месте; результат - значения ok-пар в порядке ключей.
func forEachPair[T any](ctx context.Context, workers int, keys []models.PairKey, fn func(models.PairKey) (T, bool)) ([]T, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(keys) {
		workers = len(keys)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	jobs := make(chan int)
	slots := make([]pairResult[T], len(keys))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				v, ok := fn(keys[idx])
				slots[idx] = pairResult[T]{value: v, ok: ok}
			}
		}()
	}

	// Раздача задач с кооперативной отменой
	var cancelled error
feed:
	for i := range keys {
		select {
		case jobs <- i:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled != nil {
		return nil, cancelled
	}

	out := make([]T, 0, len(keys))
	for _, slot := range slots {
		if slot.ok {
			out = append(out, slot.value)
		}
	}
	return out, nil
}
