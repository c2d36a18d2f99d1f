package async

// CompletionHandler
// 完成处理器。每个操作最多触发其中一个槽位，且仅触发一次，运行于工作协程。
type CompletionHandler[R any] interface {
	// Completed
	// 操作成功时触发。
	Completed(result R, attachment any)
	// Failed
	// 操作失败时触发。
	Failed(cause error, attachment any)
}

// Handle
// 函数对形式的完成处理器。空槽位会被跳过。
type Handle[R any] struct {
	OnCompleted func(result R, attachment any)
	OnFailed    func(cause error, attachment any)
}

func (handle Handle[R]) Completed(result R, attachment any) {
	if handle.OnCompleted != nil {
		handle.OnCompleted(result, attachment)
	}
}

func (handle Handle[R]) Failed(cause error, attachment any) {
	if handle.OnFailed != nil {
		handle.OnFailed(cause, attachment)
	}
}
