package logger

import (
	"fmt"
)

// AsynqLogger 适配 asynq.Logger 接口
type AsynqLogger struct{}

func NewAsynqLogger() *AsynqLogger {
	return &AsynqLogger{}
}

func (AsynqLogger) Debug(args ...interface{}) { Debug("%s", fmt.Sprint(args...)) }
func (AsynqLogger) Info(args ...interface{})  { Info("%s", fmt.Sprint(args...)) }
func (AsynqLogger) Warn(args ...interface{})  { Warn("%s", fmt.Sprint(args...)) }
func (AsynqLogger) Error(args ...interface{}) { Error("%s", fmt.Sprint(args...)) }
func (AsynqLogger) Fatal(args ...interface{}) { Fatal("%s", fmt.Sprint(args...)) }
