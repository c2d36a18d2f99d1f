// Package bio 在堵塞套接字之上提供异步外观。
//
// 调用方以未来句柄或完成回调的方式发起 connect、read、write 与 accept，
// 底层 I/O 由每个通道私有的有界工作池以堵塞调用完成。
// 不做事件驱动多路复用，不做 TLS，不做协议分帧。
package bio
