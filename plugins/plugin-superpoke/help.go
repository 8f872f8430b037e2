package pluginsuperpoke

import (
	"fmt"
	"strings"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
)

func (sp *superPoke) handleAllHelps(ctx protocol.Context) {
	_ = ctx.SendPlainMessage(allHelps(ctx.Host().Plugins(), ctx.CommandPrefix()))
}

// allHelps renders every plugin that has metadata, in registration order.
func allHelps(plugins []protocol.PluginInfo, prefix string) string {
	var b strings.Builder
	for _, pl := range plugins {
		if pl.Meta == nil {
			continue
		}
		desc := pl.Meta.Desc
		if desc == "" {
			desc = "帮助信息: 未提供"
		}
		fmt.Fprintf(&b, "插件 %s 帮助信息：\n%s", pl.Meta.PluginName, desc)
		fmt.Fprintf(&b, "\n\n作者: %s\n版本: %s", orUnknown(pl.Meta.Author), orUnknown(pl.Meta.Version))
		if len(pl.Commands) > 0 {
			b.WriteString("\n\n指令列表：\n")
			for _, c := range pl.Commands {
				fmt.Fprintf(&b, "%s: %s\n", c.Name, c.Desc)
			}
		}
		fmt.Fprintf(&b, "\nTip: 指令的触发需要添加唤醒前缀，默认为 %s。\n\n------------------\n\n", prefix)
	}
	b.WriteString("更多帮助信息请查看插件仓库 README。")
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "未知"
	}
	return s
}
