package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	hzte "github.com/cloudwego/hertz/pkg/common/errors"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/hertz-contrib/cors"

	"user-portal/pkg/common/config"
	errs "user-portal/pkg/common/errors"
	"user-portal/pkg/common/metrics"
)

const (
	HeaderRequestID = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID 返回当前请求的ID，LoggerMiddleware 之前调用时为空
func RequestID(ctx *app.RequestContext) string {
	return ctx.GetString(requestIDKey)
}

// LoggerMiddleware 结构化的请求日志记录
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		requestID := string(ctx.GetHeader(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set(requestIDKey, requestID)
		ctx.Response.Header.Set(HeaderRequestID, requestID)

		start := time.Now()
		ctx.Next(c) // 放行到后续处理器
		latency := time.Since(start)

		// 私有错误只写日志，不返回给客户端
		for _, e := range ctx.Errors.ByType(hzte.ErrorTypePrivate) {
			hlog.CtxErrorf(c, "request_id=%s path=%s meta=%v error=%v",
				requestID, ctx.Path(), e.Meta, e.Err)
		}
		for _, e := range ctx.Errors.ByType(hzte.ErrorTypePublic) {
			hlog.CtxDebugf(c, "request_id=%s code=%v", requestID, e.Meta)
		}

		// 结构化日志输出
		hlog.CtxInfof(c, "| %3d | %13v | %15s | %-7s | %s | request_id=%s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			requestID,
		)
	}
}

/*
	启动时指定环境变量
	export APP_ENV=production
	web serve
*/

// RecoveryMiddleware 增强型异常捕获（带配置依赖版本）
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				// 获取调用堆栈
				stack := string(debug.Stack())

				hlog.CtxErrorf(c, "[PANIC RECOVERED] request_id=%s %v\n%s", RequestID(ctx), err, stack)

				// 生产环境处理
				if cfg.IsProd() {
					ctx.AbortWithStatusJSON(500, errs.ErrInternal.Body())
				} else { // 开发环境显示详细错误
					ctx.AbortWithStatusJSON(500, map[string]interface{}{
						"error": errs.ErrInternal.WithMessage("%v", err),
						"stack": strings.Split(stack, "\n"), // 切割为字符串数组更易读
					})
				}
			}
		}()
		ctx.Next(c)
	}
}

// CORSMiddleware 安全的跨域配置
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     corsConfig.AllowOrigins,
		AllowMethods:     corsConfig.AllowMethods,
		AllowHeaders:     corsConfig.AllowHeaders,
		ExposeHeaders:    corsConfig.ExposeHeaders,
		AllowCredentials: corsConfig.AllowCredentials,
		MaxAge:           corsConfig.MaxAge,
	}
	// 动态校验来源
	if len(corsConfig.TrustedDomains) > 0 {
		cfg.AllowOriginFunc = func(origin string) bool {
			for _, domain := range corsConfig.TrustedDomains {
				if strings.HasSuffix(origin, domain) {
					return true
				}
			}
			return false
		}
	}
	return cors.New(cfg)
}

// SecurityCheckMiddleware 全局安全校验中间件
func SecurityCheckMiddleware(sec config.SecurityConfig) app.HandlerFunc {
	allowed := make(map[string]bool, len(sec.AllowedMethods))
	for _, m := range sec.AllowedMethods {
		allowed[strings.ToUpper(m)] = true
	}

	return func(c context.Context, ctx *app.RequestContext) {
		// 防护机制1：请求体大小限制
		if sec.MaxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > sec.MaxBodySize {
			securityResponse(c, ctx, "BODY_TOO_LARGE", "request body exceeds max size", 413)
			return
		}

		// 防护机制2：检查HTTP方法
		if !allowed[string(ctx.Method())] {
			securityResponse(c, ctx, "METHOD_NOT_ALLOWED", "method not allowed", 405)
			return
		}

		ctx.Next(c)
	}
}

// MetricsMiddleware 按路由统计请求数与耗时
func MetricsMiddleware(m *metrics.Metrics) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(string(ctx.Method()), route, ctx.Response.StatusCode(), time.Since(start))
	}
}

// 安全响应统一处理
func securityResponse(c context.Context, ctx *app.RequestContext, code, msg string, status int) {
	hlog.CtxWarnf(c, "SecurityAlert[code=%s] request_id=%s: %s", code, RequestID(ctx), msg)
	ctx.AbortWithStatusJSON(status, errs.New(status, code, msg).Body())
}

// abortWith 以统一错误格式终止请求
func abortWith(ctx *app.RequestContext, e *errs.Error) {
	ctx.AbortWithStatusJSON(e.Status, e.Body())
}

func describe(ctx *app.RequestContext) string {
	return fmt.Sprintf("%s %s", ctx.Method(), ctx.Path())
}
