package pluginsuperpoke

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Hafuunano/Plugin-SuperPoke/lib/logger"
	"github.com/Hafuunano/Plugin-SuperPoke/lib/protocol"
)

const statsLimit = 5

func helpText(prefix string) string {
	var b strings.Builder
	b.WriteString("超级戳一戳功能简介：\n")
	b.WriteString("\n戳一戳 bot 时，会按权重随机执行一条下列指令，效果等同于你亲自发送了它。\n")
	fmt.Fprintf(&b, "\n%ssuperpoke list\n查看当前的戳一戳指令及权重", prefix)
	fmt.Fprintf(&b, "\n%ssuperpoke add [权重] <指令>\n添加一条指令，权重 1-100，默认 1", prefix)
	fmt.Fprintf(&b, "\n%ssuperpoke weight <序号> <权重>\n修改指令权重", prefix)
	fmt.Fprintf(&b, "\n%ssuperpoke del <序号>\n删除指令", prefix)
	fmt.Fprintf(&b, "\n%ssuperpoke set <指令>\n只保留这一条指令", prefix)
	fmt.Fprintf(&b, "\n%ssuperpoke clear\n清空指令列表", prefix)
	fmt.Fprintf(&b, "\n%sallhelps\n查看本bot安装的其他插件中所有的指令", prefix)
	fmt.Fprintf(&b, "\n%spokestats\n查看本群戳一戳排行", prefix)
	b.WriteString("\n\n除 list 外的管理指令仅限超级管理员使用。")
	return b.String()
}

func formatList(entries []CommandEntry) string {
	if len(entries) == 0 {
		return "当前未设置任何戳一戳指令。"
	}
	total := 0
	for _, e := range entries {
		total += e.Weight
	}
	var b strings.Builder
	b.WriteString("戳一戳指令列表：")
	for i, e := range entries {
		share := float64(e.Weight) * 100 / float64(total)
		fmt.Fprintf(&b, "\n%d. [权重 %d | %.1f%%] %s", i+1, e.Weight, share, e.Command)
	}
	return b.String()
}

// handleCommand dispatches "superpoke <sub> ...". Only list and help are open to everyone.
func (sp *superPoke) handleCommand(ctx protocol.Context) {
	args := ctx.Args()
	if len(args) == 0 || args[0] == "help" {
		_ = ctx.SendPlainMessage(helpText(ctx.CommandPrefix()))
		return
	}
	sub := args[0]
	rest := strings.TrimSpace(strings.TrimPrefix(ctx.ArgText(), sub))

	if sub == "list" {
		msg := formatList(sp.list.Entries())
		if err := sp.list.LoadErr(); err != nil {
			msg += "\n（指令文件读取失败：" + err.Error() + "）"
		}
		_ = ctx.SendPlainMessage(msg)
		return
	}
	switch sub {
	case "add", "weight", "del", "set", "clear":
	default:
		_ = ctx.SendPlainMessage("未知的子指令 " + sub + "，发送 " + ctx.CommandPrefix() + "superpoke help 查看用法")
		return
	}
	if !ctx.IsSuperAdmin() {
		_ = ctx.SendPlainMessage("权限不足")
		return
	}

	var reply string
	var err error
	switch sub {
	case "add":
		reply, err = sp.add(ctx.Host(), rest)
	case "weight":
		reply, err = sp.setWeight(rest)
	case "del":
		reply, err = sp.del(rest)
	case "set":
		reply, err = sp.set(ctx.Host(), rest)
	case "clear":
		if err = sp.list.Clear(); err == nil {
			reply = "已清空戳一戳指令列表"
		}
	}
	if err != nil {
		reply = describeErr(err)
		if reply == "" {
			log := logger.Get(pluginName)
			log.Error().Err(err).Str("sub", sub).Msg("superpoke command")
			reply = "操作失败"
		}
	}
	_ = ctx.SendPlainMessage(reply)
}

var (
	errUsage          = errors.New("usage")
	errUnknownCommand = errors.New("unknown command")
	errSelfReference  = errors.New("self reference")
)

type usageError struct{ usage string }

func (e usageError) Error() string { return e.usage }
func (e usageError) Unwrap() error { return errUsage }

// describeErr maps user-caused errors to replies; "" means an internal failure.
func describeErr(err error) string {
	var ue usageError
	switch {
	case errors.As(err, &ue):
		return "用法：" + ue.usage
	case errors.Is(err, errUnknownCommand):
		return "未找到此指令。"
	case errors.Is(err, errSelfReference):
		return "不能把 superpoke 自身设为戳一戳指令"
	case errors.Is(err, ErrInvalidWeight):
		return fmt.Sprintf("权重需在 %d-%d 之间", minWeight, maxWeight)
	case errors.Is(err, ErrIndexOutOfRange):
		return "序号超出范围，发送 superpoke list 查看序号"
	case errors.Is(err, ErrEmptyCommand):
		return "指令不能为空"
	}
	return ""
}

// checkCommand strips a leading prefix and verifies the first word is a registered command.
func checkCommand(h *protocol.Host, command string) (string, error) {
	command, _ = h.StripPrefix(strings.TrimSpace(command))
	command = strings.TrimSpace(command)
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", ErrEmptyCommand
	}
	if fields[0] == "superpoke" {
		return "", errSelfReference
	}
	if !h.HasCommand(fields[0]) {
		return "", errUnknownCommand
	}
	return command, nil
}

func (sp *superPoke) add(h *protocol.Host, rest string) (string, error) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", usageError{"superpoke add [权重] <指令>"}
	}
	weight := minWeight
	command := rest
	if len(fields) >= 2 {
		if w, err := strconv.Atoi(fields[0]); err == nil {
			weight = w
			command = strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
		}
	}
	if weight < minWeight || weight > maxWeight {
		return "", ErrInvalidWeight
	}
	command, err := checkCommand(h, command)
	if err != nil {
		return "", err
	}
	if err := sp.list.Add(command, weight); err != nil {
		return "", err
	}
	return fmt.Sprintf("已添加戳一戳指令「%s」，权重 %d", command, weight), nil
}

func (sp *superPoke) setWeight(rest string) (string, error) {
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return "", usageError{"superpoke weight <序号> <权重>"}
	}
	idx, err1 := strconv.Atoi(fields[0])
	w, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return "", usageError{"superpoke weight <序号> <权重>"}
	}
	if err := sp.list.SetWeight(idx-1, w); err != nil {
		return "", err
	}
	return fmt.Sprintf("已将第 %d 条指令的权重设为 %d", idx, w), nil
}

func (sp *superPoke) del(rest string) (string, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return "", usageError{"superpoke del <序号>"}
	}
	removed, err := sp.list.Delete(idx - 1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("已删除戳一戳指令「%s」", removed.Command), nil
}

func (sp *superPoke) set(h *protocol.Host, rest string) (string, error) {
	if strings.TrimSpace(rest) == "" {
		return "", usageError{"superpoke set <指令>"}
	}
	command, err := checkCommand(h, rest)
	if err != nil {
		return "", err
	}
	if err := sp.list.Replace(command); err != nil {
		return "", err
	}
	return "戳一戳指令设置成功", nil
}

func (sp *superPoke) handleStats(ctx protocol.Context) {
	h := sp.historyStore()
	if h == nil {
		_ = ctx.SendPlainMessage("戳一戳记录未启用")
		return
	}
	stats, err := h.Top(ctx.GroupID(), statsLimit)
	if err != nil {
		log := logger.Get(pluginName)
		log.Error().Err(err).Msg("poke stats")
		_ = ctx.SendPlainMessage("查询失败")
		return
	}
	if len(stats) == 0 {
		_ = ctx.SendPlainMessage("还没有人戳过我哦")
		return
	}
	var b strings.Builder
	b.WriteString("戳一戳排行：")
	for i, s := range stats {
		fmt.Fprintf(&b, "\n%d. %s × %d（%s）", i+1, s.UserID, s.Count, humanize.Time(s.Last))
	}
	_ = ctx.SendPlainMessage(b.String())
}
