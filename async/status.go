package async

// Status
// 操作状态。单向迁移：Pending 只会迁移到一个终态，且仅迁移一次。
type Status int

const (
	// Pending
	// 操作尚未执行完毕。
	Pending Status = iota
	// Completed
	// 操作执行成功。
	Completed
	// Failed
	// 操作执行失败。
	Failed
	// Cancelled
	// 操作已被取消。
	Cancelled
)

func (status Status) String() string {
	switch status {
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
