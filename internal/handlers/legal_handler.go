package handlers

import (
	"github.com/gofiber/fiber/v2"
)

const legalStyle = `<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>`

// LegalHandler serves the privacy policy and terms that submitters must
// accept before a review is stored.
type LegalHandler struct {
	contact string
}

func NewLegalHandler(contact string) *LegalHandler {
	return &LegalHandler{contact: contact}
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>隐私政策 - ` + serviceName + `</title>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
` + legalStyle + `
</head><body>
<h1>隐私政策</h1>
<p>最后更新：2025年1月</p>
<h2>我们收集的信息</h2>
<p>提交评价时我们会记录您填写的姓名、可选的邮箱、IP地址和浏览器标识，仅用于审核和防止滥用，不会公开展示。</p>
<h2>被评价人的信息</h2>
<p>被评价人的姓名在公开页面中始终以脱敏形式展示。只有在搜索完全匹配真实姓名时，才会在该次结果中显示全名。</p>
<h2>内容处理</h2>
<p>评价内容中的电话号码、邮箱地址和银行卡号会在发布前自动隐藏。原始内容仅供审核人员查看。</p>
<h2>证据文件</h2>
<p>上传的图片仅用于审核，不会公开展示。</p>
<h2>联系我们</h2>
<p>如对本政策有任何疑问，请联系 ` + h.contact + `</p>
</body></html>`)
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>使用条款 - ` + serviceName + `</title>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
` + legalStyle + `
</head><body>
<h1>使用条款</h1>
<p>最后更新：2025年1月</p>
<h2>真实性声明</h2>
<p>提交评价即表示您确认内容基于亲身经历且真实可信。虚假、诽谤或恶意内容将被删除。</p>
<h2>内容审核</h2>
<p>所有评价在公开前都会经过审核。我们保留拒绝或删除任何违反本条款内容的权利。</p>
<h2>举报</h2>
<p>如发现不实或不当内容，请使用评价旁的举报功能，我们将在24小时内处理。</p>
<h2>联系我们</h2>
<p>如有疑问，请联系 ` + h.contact + `</p>
</body></html>`)
}
