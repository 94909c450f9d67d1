package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration は認証情報などの設定不足で呼び出しを開始できなかったことを表します。
	ErrConfiguration = errors.New("configuration error")
	// ErrNoImagesProduced は全ての呼び出しから画像が1枚も得られなかったことを表します。
	ErrNoImagesProduced = errors.New("no images produced")
)

// ConfigurationError は API キー未設定などで生成を開始できない場合のエラーです。
// ネットワーク呼び出しは一切行われていません。
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// UpstreamCallError はファンアウトした個々の生成呼び出しの失敗です。
// 兄弟の呼び出しを中断せず、単独で呼び出し元に返されることもありません。
type UpstreamCallError struct {
	Index int
	Err   error
}

func (e *UpstreamCallError) Error() string {
	return fmt.Sprintf("generation call %d failed: %v", e.Index, e.Err)
}

func (e *UpstreamCallError) Unwrap() error { return e.Err }

// NoImagesProducedError は全ての呼び出しが失敗したか、画像パーツを返さなかった場合のエラーです。
type NoImagesProducedError struct {
	Requested int
	Failures  []*UpstreamCallError
}

func (e *NoImagesProducedError) Error() string {
	return fmt.Sprintf("no images produced (%d requested, %d calls failed)", e.Requested, len(e.Failures))
}

func (e *NoImagesProducedError) Is(target error) bool { return target == ErrNoImagesProduced }

// Unwrap は個々の呼び出しの失敗を返します。
func (e *NoImagesProducedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}
