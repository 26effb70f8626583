package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/artisenpaiii/liftlog/internal/service"
	"github.com/artisenpaiii/liftlog/pkg/response"
)

var validatorOnce sync.Once

// setupValidator 让校验错误报告 json 字段名（如 programId）而非 Go 字段名，
// 并注册 bcryptmax 规则（bcrypt 按字节限制密码长度）
func setupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= service.MaxPasswordBytes
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// bindJSON 解析并校验请求体，失败时写入 400（或 413）响应并返回 false
func bindJSON(c *gin.Context, req interface{}) bool {
	return bindWith(c, req, c.ShouldBindJSON)
}

// bindQuery 解析并校验查询参数
func bindQuery(c *gin.Context, req interface{}) bool {
	return bindWith(c, req, c.ShouldBindQuery)
}

func bindWith(c *gin.Context, req interface{}, bind func(interface{}) error) bool {
	validatorOnce.Do(setupValidator)

	err := bind(req)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "body_too_large", "Request body too large")
		return false
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make([]response.FieldDetail, 0, len(ve))
		for _, fe := range ve {
			details = append(details, response.FieldDetail{Field: fieldPath(fe), Rule: fe.Tag()})
		}
		response.ValidationFailed(c, details)
		return false
	}

	// JSON 语法错误或类型不匹配
	response.ValidationFailed(c, []response.FieldDetail{{Field: "body", Rule: "json"}})
	return false
}

// fieldPath 去掉顶层结构体名，保留 columns[1] 这类切片下标
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
