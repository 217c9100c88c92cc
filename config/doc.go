// Package config 提供 omnirelay 的配置管理。
//
// 加载优先级：默认值 → YAML 文件 → 环境变量。各服务的配置结构
// 定义在各自的包里，这里只做聚合与加载。
package config
