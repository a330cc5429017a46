package app

import "github.com/google/wire"

// AppComponents 收集 Wire 注入的服务和资源
type AppComponents struct {
	Servers []Server
	Closers []Closer
}

// ProviderSet 导出给 Wire 使用
var ProviderSet = wire.NewSet(NewBaseApp)

// InitApp 将注入的组件绑定到 BaseApp
func InitApp(a *BaseApp, comps AppComponents) *BaseApp {
	a.AppendServer(comps.Servers...)
	a.AppendCloser(comps.Closers...)
	return a
}

// CloserFunc 函数适配为 Closer
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }
