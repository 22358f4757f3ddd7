package retrieval

// FAQ is one knowledge-base entry.
type FAQ struct {
	Category string
	Question string
	Answer   string
}

var builtinFAQs = []FAQ{
	{
		Category: "shipping",
		Question: "What are your shipping options?",
		Answer:   "We offer Standard Shipping (5-7 business days, $5.99), Express Shipping (2-3 business days, $12.99), and Overnight Shipping (1 business day, $24.99). Free standard shipping on orders over $50.",
	},
	{
		Category: "shipping",
		Question: "How long does shipping take?",
		Answer:   "Standard shipping takes 5-7 business days, Express shipping takes 2-3 business days, and Overnight shipping takes 1 business day. International shipping typically takes 10-15 business days.",
	},
	{
		Category: "shipping",
		Question: "Do you ship internationally?",
		Answer:   "Yes, we ship to over 100 countries worldwide. International shipping rates vary by destination and are calculated at checkout. Please note that customs duties and import taxes may apply.",
	},
	{
		Category: "shipping",
		Question: "Can I track my order?",
		Answer:   "Yes! Once your order ships, you'll receive a tracking number via email. You can track your package using this number on our website or the carrier's tracking page.",
	},
	{
		Category: "shipping",
		Question: "What if my package is lost or damaged?",
		Answer:   "If your package is lost or arrives damaged, please contact us within 48 hours with photos (for damaged items). We'll initiate a claim with the carrier and send you a replacement or issue a full refund.",
	},
	{
		Category: "returns",
		Question: "What is your return policy?",
		Answer:   "We accept returns within 30 days of delivery for most items. Products must be unused, in original packaging, and in resalable condition. Some items like opened software or personalized products cannot be returned.",
	},
	{
		Category: "returns",
		Question: "How do I start a return?",
		Answer:   "Log into your account, go to Order History, select the order, and click 'Return Item'. Follow the prompts to print a prepaid return label. Drop off the package at any authorized carrier location.",
	},
	{
		Category: "returns",
		Question: "When will I get my refund?",
		Answer:   "Refunds are processed within 5-7 business days after we receive and inspect your return. The refund will be credited to your original payment method. Bank processing may take an additional 3-5 business days.",
	},
	{
		Category: "returns",
		Question: "Do I have to pay for return shipping?",
		Answer:   "Return shipping is free for defective items or if we made an error. For other returns, a $6.99 return shipping fee will be deducted from your refund. Premium members get free returns on all items.",
	},
	{
		Category: "returns",
		Question: "Can I exchange an item?",
		Answer:   "We don't offer direct exchanges. Please return the original item for a refund and place a new order for the item you want. This ensures faster processing and you get the item you need sooner.",
	},
	{
		Category: "billing",
		Question: "What payment methods do you accept?",
		Answer:   "We accept Visa, Mastercard, American Express, Discover, PayPal, Apple Pay, Google Pay, and Shop Pay. We also offer buy now, pay later options through Affirm and Klarna.",
	},
	{
		Category: "billing",
		Question: "Why was my payment declined?",
		Answer:   "Common reasons include insufficient funds, incorrect card details, billing address mismatch, or security holds by your bank. Please verify your information and try again. If the issue persists, contact your bank or use a different payment method.",
	},
	{
		Category: "billing",
		Question: "Do you charge sales tax?",
		Answer:   "Yes, we're required to collect sales tax in states where we have nexus. Tax is calculated based on your shipping address and applicable local rates. The exact amount will be shown before you complete your purchase.",
	},
	{
		Category: "account",
		Question: "I forgot my password. What should I do?",
		Answer:   "Click 'Forgot Password' on the login page, enter your email address, and we'll send you a password reset link. Follow the link to create a new password. The link expires in 24 hours.",
	},
	{
		Category: "account",
		Question: "How do I change my email address?",
		Answer:   "Log into your account, go to Settings > Profile, click 'Edit' next to your email, enter your new email, and verify it by clicking the link we send you. Your old email will remain active until verification.",
	},
	{
		Category: "account",
		Question: "Can I delete my account?",
		Answer:   "Yes. Go to Settings > Privacy > Delete Account. Please note this action is permanent and cannot be undone. You'll lose your order history, saved addresses, and preferences. Active orders must be completed first.",
	},
	{
		Category: "products",
		Question: "Are your products authentic?",
		Answer:   "Yes, all our products are 100% authentic and sourced directly from manufacturers or authorized distributors. We guarantee authenticity and offer full refunds if any product is found to be counterfeit.",
	},
	{
		Category: "products",
		Question: "When will items be back in stock?",
		Answer:   "Out-of-stock items usually restock within 2-4 weeks. Click 'Notify Me' on the product page to receive an email when it's available. Popular items may sell out quickly upon restocking, so act fast!",
	},
	{
		Category: "products",
		Question: "Do you offer product warranties?",
		Answer:   "Yes, most electronics and appliances come with manufacturer warranties (typically 1 year). We also offer extended warranty plans at checkout. Warranty details are listed on each product page.",
	},
	{
		Category: "orders",
		Question: "Can I cancel my order?",
		Answer:   "Orders can be cancelled within 1 hour of placement. Go to Order History, select your order, and click 'Cancel'. After 1 hour, orders enter processing and cannot be cancelled, but you can return items once received.",
	},
	{
		Category: "orders",
		Question: "Can I change my shipping address after ordering?",
		Answer:   "You can change the address within 1 hour of placing your order. Go to Order History and click 'Edit Address'. After the order enters processing, address changes aren't possible. Contact support immediately for urgent changes.",
	},
	{
		Category: "orders",
		Question: "What does each order status mean?",
		Answer:   "Pending: Payment being verified. Processing: Being prepared for shipment. Shipped: On the way to you. Delivered: Successfully received. Cancelled: Order was cancelled. Returned: Items sent back.",
	},
	{
		Category: "promotions",
		Question: "How do I use a promo code?",
		Answer:   "Enter your promo code in the 'Discount Code' field at checkout and click 'Apply'. The discount will be reflected in your order total. Only one promo code can be used per order.",
	},
	{
		Category: "promotions",
		Question: "Why isn't my promo code working?",
		Answer:   "Common reasons: code expired, minimum purchase requirement not met, excluded items in cart, or code already used (one-time use codes). Check the promo terms and conditions or contact support for help.",
	},
	{
		Category: "promotions",
		Question: "Do you have a loyalty program?",
		Answer:   "Yes! Our Rewards program lets you earn 1 point per dollar spent. Earn 100 points to get a $5 reward. Members also get exclusive discounts, early sale access, and birthday bonuses. Join free in your account settings.",
	},
	{
		Category: "support",
		Question: "How can I contact customer service?",
		Answer:   "Contact us via: Live chat (available 9 AM - 9 PM EST), Email (support@company.com, 24-hour response), Phone (1-800-123-4567, 9 AM - 9 PM EST Mon-Fri), or submit a support ticket through your account.",
	},
	{
		Category: "support",
		Question: "What are your business hours?",
		Answer:   "Our customer service team is available Monday-Friday 9 AM - 9 PM EST, and Saturday-Sunday 10 AM - 6 PM EST. Email support is monitored 24/7 and we respond within 24 hours, typically much faster.",
	},
	{
		Category: "support",
		Question: "What should I do if I received the wrong item?",
		Answer:   "We sincerely apologize! Contact us immediately with your order number and photos of the wrong item. We'll send you the correct item via expedited shipping at no charge and provide a prepaid return label for the wrong item.",
	},
	{
		Category: "technical",
		Question: "Why can't I log in?",
		Answer:   "Common issues: incorrect password (try password reset), caps lock enabled, browser cookies disabled, account suspended (check email), or temporary server issues. Try resetting your password or contact support if problems continue.",
	},
	{
		Category: "technical",
		Question: "Is there a mobile app?",
		Answer:   "Yes! Download our app from the App Store (iOS) or Google Play (Android). The app offers exclusive mobile-only deals, faster checkout, push notifications for order updates, and a better shopping experience.",
	},
}
