package generator

import (
	"context"

	"github.com/nygula/Taoda/internal/model"
)

// EventType 生成事件类型
type EventType string

const (
	EventStart        EventType = "start"
	EventProgress     EventType = "progress"
	EventRecordFailed EventType = "record_failed"
	EventDone         EventType = "done"
	EventError        EventType = "error"
)

// Event 生成进度事件
type Event struct {
	Type      EventType
	Completed int
	Total     int
	Failure   *model.RecordFailure
	Outcome   *model.BatchOutcome // done / error 事件携带，error 时可能为 nil
	Err       error
}

// Request 一次批量生成请求
type Request struct {
	TemplatePath string
	Records      []model.Record
	OutputDir    string
}

// Start 在后台执行批量生成，返回按记录顺序产生事件的通道
// 最后一个事件为 done 或 error，随后通道关闭
func (g *Generator) Start(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event, 64)

	go func() {
		defer close(events)

		send := func(ev Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}

		total := len(req.Records)
		send(Event{Type: EventStart, Total: total})

		outcome, err := g.run(ctx, req.TemplatePath, req.Records, req.OutputDir, hooks{
			progress: func(completed int) {
				send(Event{Type: EventProgress, Completed: completed, Total: total})
			},
			failure: func(f model.RecordFailure) {
				send(Event{Type: EventRecordFailed, Total: total, Failure: &f})
			},
		})
		if err != nil {
			ev := Event{Type: EventError, Total: total, Outcome: outcome, Err: err}
			if outcome != nil {
				ev.Completed = outcome.Attempted
			}
			// 最终事件不因取消而丢弃，消费方负责读完通道
			events <- ev
			return
		}
		events <- Event{Type: EventDone, Completed: outcome.Attempted, Total: total, Outcome: outcome}
	}()

	return events
}
