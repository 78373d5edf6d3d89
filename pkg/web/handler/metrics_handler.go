package handler

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	errs "user-portal/pkg/common/errors"
)

// MetricsHandler 将 promhttp 处理器挂到 Hertz 上
type MetricsHandler struct {
	next http.Handler
}

func NewMetricsHandler(gatherer prometheus.Gatherer) *MetricsHandler {
	return &MetricsHandler{next: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})}
}

func (h *MetricsHandler) Serve(ctx context.Context, c *app.RequestContext) {
	req, err := adaptor.GetCompatRequest(&c.Request)
	if err != nil {
		respondError(c, err, errs.ErrInternal)
		return
	}
	h.next.ServeHTTP(adaptor.GetCompatResponseWriter(&c.Response), req.WithContext(ctx))
}
