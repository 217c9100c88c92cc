package interaction

import (
	"errors"

	"github.com/BaSui01/omnirelay/openai"
)

// DetailFromError 把错误转成可入日志的 ErrorDetail，供应商错误
// 保留 status/type/code 字段。
func DetailFromError(err error) *ErrorDetail {
	if err == nil {
		return nil
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &ErrorDetail{
			Message: apiErr.Message,
			Status:  apiErr.Status,
			Type:    apiErr.Type,
			Code:    apiErr.Code,
		}
	}
	return &ErrorDetail{Message: err.Error()}
}
