package notifier

import (
	"encoding/json"
	"fmt"
	"log"

	"PriceRadar/pkg/model"
)

// AlertAuditHandler 返回告警流的审计处理函数
// 投递语义是至少一次且不重试，消费已发出的通知留一份投递日志，
// 排查"用户没收到告警"时可以确认通知是否出过推送边界
func AlertAuditHandler() func(data []byte) error {
	return func(data []byte) error {
		var n model.AlertNotification
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("解析告警通知失败: %w", err)
		}

		log.Printf("告警通知已投递: 用户=%s 告警=%s %s\n", n.UserID, n.AlertID, n.Message)
		return nil
	}
}
