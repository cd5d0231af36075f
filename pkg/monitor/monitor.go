package monitor

import (
	"sync"
	"time"
)

// HealthStatus 组件健康状态
type HealthStatus struct {
	Component   string    `json:"component"`
	Status      string    `json:"status"`
	LastChecked time.Time `json:"last_checked"`
	Message     string    `json:"message,omitempty"`
}

// Monitor 组件健康状态登记表
// 调度器在每轮管道执行后上报状态，维护任务定期巡检基础设施依赖，
// /health 和 /ready 端点从这里读取
type Monitor struct {
	components map[string]*HealthStatus
	mutex      sync.RWMutex
}

// NewMonitor 创建监控登记表
func NewMonitor() *Monitor {
	return &Monitor{
		components: make(map[string]*HealthStatus),
	}
}

// RegisterComponent 注册组件，初始状态未知
func (m *Monitor) RegisterComponent(component string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.components[component] = &HealthStatus{
		Component:   component,
		Status:      "unknown",
		LastChecked: time.Now(),
	}
}

// UpdateStatus 更新组件状态
func (m *Monitor) UpdateStatus(component, status, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.components[component]; !exists {
		m.components[component] = &HealthStatus{
			Component: component,
		}
	}

	m.components[component].Status = status
	m.components[component].LastChecked = time.Now()
	m.components[component].Message = message
}

// GetStatus 获取指定组件状态
func (m *Monitor) GetStatus(component string) *HealthStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if status, exists := m.components[component]; exists {
		copied := *status
		return &copied
	}

	return nil
}

// GetAllStatus 获取所有组件状态
func (m *Monitor) GetAllStatus() []*HealthStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	statuses := make([]*HealthStatus, 0, len(m.components))
	for _, status := range m.components {
		copied := *status
		statuses = append(statuses, &copied)
	}

	return statuses
}

// IsReady 所有已注册组件都健康时才算就绪
func (m *Monitor) IsReady() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, status := range m.components {
		if status.Status != "healthy" {
			return false
		}
	}
	return len(m.components) > 0
}
