package handler

import (
	"html/template"
)

// 页面外壳模板：区块HTML由渲染器生成，这里负责外层骨架和捐赠弹窗
var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "donate_page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/static/donate.css">
</head>
<body>
<div class="donate-page donate-page-blocks">
{{.BlocksHTML}}
</div>
<div class="donation-modal-overlay" id="donation-modal" hidden>
  <div class="donation-modal" role="dialog" aria-modal="true">
    <button type="button" class="donation-modal-close" id="donation-close" aria-label="Close">&times;</button>
    <h2 class="donation-modal-title">Donate to {{.Title}}</h2>
    <p class="donation-error" id="donation-error" hidden></p>
    <div class="donation-form" id="donation-form">
      <div class="amount-presets">
        {{range .Presets}}<button type="button" class="preset-btn" data-amount="{{.}}">${{.}}</button>{{end}}
      </div>
      <div class="custom-amount">
        <label for="custom-amount">Or enter amount:</label>
        <input id="custom-amount" type="number" min="1" step="0.01" placeholder="0.00">
      </div>
      <div class="form-field">
        <label for="donor-email">Email (optional, for receipt):</label>
        <input id="donor-email" type="email" placeholder="you@example.com">
      </div>
      <div class="form-field">
        <label for="donor-message">Message (optional):</label>
        <textarea id="donor-message" rows="3" placeholder="Add a message of support..."></textarea>
      </div>
      <button type="button" class="donation-submit-btn" id="donation-submit">Donate</button>
    </div>
    <div id="payment-section" hidden>
      <form id="payment-form">
        <div class="donation-summary"><p id="payment-amount"></p></div>
        <div id="payment-element"></div>
        <button type="submit" class="donation-submit-btn" id="payment-submit">Pay</button>
      </form>
      <button type="button" class="donation-back-btn" id="change-amount">Change amount</button>
    </div>
  </div>
</div>
<script src="https://js.stripe.com/v3/"></script>
<script>
(function () {
  var campaignId = {{.CampaignID}};
  var modal = document.getElementById("donation-modal");
  var errorEl = document.getElementById("donation-error");
  var selected = null;
  var stripe = null;
  var elements = null;

  function showError(msg) {
    errorEl.textContent = msg || "";
    errorEl.hidden = !msg;
  }

  document.querySelectorAll(".donate-block-donate-cta").forEach(function (btn) {
    btn.addEventListener("click", function (e) {
      e.preventDefault();
      modal.hidden = false;
    });
  });
  document.getElementById("donation-close").addEventListener("click", function () {
    modal.hidden = true;
  });
  document.querySelectorAll(".preset-btn").forEach(function (btn) {
    btn.addEventListener("click", function () {
      selected = parseFloat(btn.dataset.amount);
      document.getElementById("custom-amount").value = "";
      document.querySelectorAll(".preset-btn").forEach(function (b) { b.classList.remove("selected"); });
      btn.classList.add("selected");
    });
  });
  document.getElementById("custom-amount").addEventListener("input", function (e) {
    selected = null;
    document.querySelectorAll(".preset-btn").forEach(function (b) { b.classList.remove("selected"); });
  });

  document.getElementById("donation-submit").addEventListener("click", function () {
    var amount = selected || parseFloat(document.getElementById("custom-amount").value);
    if (!amount || amount <= 0) {
      showError("Please enter a valid amount.");
      return;
    }
    showError("");
    fetch("/api/donations/checkout", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({
        campaign_id: campaignId,
        amount: amount,
        donor_email: document.getElementById("donor-email").value.trim(),
        message: document.getElementById("donor-message").value.trim()
      })
    }).then(function (res) { return res.json(); }).then(function (body) {
      if (!body.success) {
        showError(body.message || "Checkout failed");
        return;
      }
      var data = body.data;
      stripe = Stripe(data.publishable_key);
      elements = stripe.elements({ clientSecret: data.clientSecret });
      elements.create("payment").mount("#payment-element");
      document.getElementById("payment-amount").textContent = "Amount: $" + data.amount.toFixed(2);
      document.getElementById("payment-submit").textContent = "Pay $" + data.amount.toFixed(2);
      document.getElementById("payment-form").dataset.returnUrl = data.return_url;
      document.getElementById("donation-form").hidden = true;
      document.getElementById("payment-section").hidden = false;
    }).catch(function (err) {
      showError(err.message || "An error occurred");
    });
  });

  document.getElementById("payment-form").addEventListener("submit", function (e) {
    e.preventDefault();
    stripe.confirmPayment({
      elements: elements,
      confirmParams: { return_url: e.target.dataset.returnUrl }
    }).then(function (result) {
      if (result.error) showError(result.error.message || "Payment failed");
    });
  });

  document.getElementById("change-amount").addEventListener("click", function () {
    document.getElementById("payment-section").hidden = true;
    document.getElementById("donation-form").hidden = false;
    showError("");
  });
})();
</script>
</body>
</html>{{end}}

{{define "thank_you_success"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Thank you!</title><link rel="stylesheet" href="/static/donate.css"></head>
<body>
<div class="thank-you-page">
  <h1>Thank you for your donation!</h1>
  <p class="thank-you-amount">You donated {{.Currency}} ${{.Amount}}{{if .CampaignTitle}} to {{.CampaignTitle}}{{end}}.</p>
  {{if .DonorMessage}}<p class="thank-you-message">&quot;{{.DonorMessage}}&quot;</p>{{end}}
  <div class="share-section">
    <h2>Share your support</h2>
    <div class="share-buttons">
      <a href="https://twitter.com/intent/tweet?text={{.ShareText}}&amp;url={{.ShareURL}}" target="_blank" rel="noopener noreferrer" class="share-btn">Share on X</a>
      <a href="https://www.facebook.com/sharer/sharer.php?u={{.ShareURL}}" target="_blank" rel="noopener noreferrer" class="share-btn">Share on Facebook</a>
    </div>
  </div>
  <a href="{{.DonateURL}}" class="thank-you-link">Back to campaign</a>
</div>
</body>
</html>{{end}}

{{define "thank_you_pending"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Thank you!</title><link rel="stylesheet" href="/static/donate.css"></head>
<body>
<div class="thank-you-page">
  <h1>Thank you!</h1>
  <p>Your donation is still being confirmed. Check back in a moment.</p>
  {{if .DonateURL}}<a href="{{.DonateURL}}" class="thank-you-link">Back to campaign</a>{{end}}
</div>
</body>
</html>{{end}}

{{define "message_page"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title><link rel="stylesheet" href="/static/donate.css"></head>
<body>
<div class="donate-page">
  <h1>{{.Title}}</h1>
  <p class="donation-error">{{.Message}}</p>
  {{if .LinkURL}}<a href="{{.LinkURL}}" class="thank-you-link">{{.LinkText}}</a>{{end}}
</div>
</body>
</html>{{end}}

{{define "embed_progress"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Campaign progress</title></head>
<body>
<div class="embed-progress campaign-progress" style="padding: 1rem; min-width: 200px; box-sizing: border-box">
  {{if .Title}}<p style="margin: 0 0 0.5rem; font-weight: 600; font-size: 14px">{{.Title}}</p>{{end}}
  <p style="margin: 0 0 0.5rem; font-size: 13px; color: #555">${{.Raised}} of ${{.Goal}} goal</p>
  <div class="progress-bar" style="background: #e5e7eb; border-radius: 4px; height: 8px">
    <div class="progress-fill" style="background: #2563eb; border-radius: 4px; height: 8px; width: {{.Percent}}%"></div>
  </div>
  <a href="{{.DonateURL}}" target="_blank" rel="noopener noreferrer" style="display: inline-block; margin-top: 0.75rem; font-size: 13px; color: #2563eb; text-decoration: none">Donate</a>
</div>
</body>
</html>{{end}}
`))
