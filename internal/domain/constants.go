package domain

const (
	BookingPending   = "pending"
	BookingInvoiced  = "invoiced"
	BookingPaid      = "paid"
	BookingCancelled = "cancelled"
)

const (
	PaymentMethodWallet = "wallet"
	PaymentMethodStripe = "stripe"
	PaymentMethodSplit  = "split"
)

// Booking.CheckoutSessionID for bookings settled entirely from the wallet.
const WalletCheckoutSession = "wallet"

const (
	RefundNone      = ""
	RefundPending   = "pending"
	RefundProcessed = "processed"
	RefundDenied    = "denied"
)

const (
	TxnDeposit    = "deposit"
	TxnWithdrawal = "withdrawal"
	TxnTransfer   = "transfer"
)

const (
	TxnPending   = "pending"
	TxnCompleted = "completed"
	TxnFailed    = "failed"
)

// Checkout metadata "type" values.
const (
	CheckoutWalletDeposit = "wallet_deposit"
	CheckoutBooking       = "booking_payment"
	CheckoutSplitBooking  = "split_booking_payment"
)

const (
	InvoicePending = "pending"
	InvoicePaid    = "paid"
)

const (
	PriceOptionFixed = "fixed"
	PriceOptionOffer = "offer"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

const (
	NotifyBookingConfirmed = "booking_confirmed"
	NotifyPaymentReceived  = "payment_received"
	NotifyTripReminder     = "trip_reminder"
	NotifyBookingCancelled = "booking_cancelled"
	NotifyRefundProcessed  = "refund_processed"
	NotifyPromo            = "promo"
	NotifySystem           = "system"
	NotifyNewBlogPost      = "new_blog_post"
	NotifyBlogComment      = "blog_comment"
	NotifyBlogReaction     = "blog_reaction"
)

const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	PostDraft     = "draft"
	PostPublished = "published"
	PostArchived  = "archived"
)

var ReactionTypes = []string{"like", "love", "insightful", "celebrate"}

const (
	EventCruise = "cruise"
)

var EventTypes = []string{"birthday_party", "wedding", "corporate_event", "anniversary", "holiday", "cruise", "other"}

var CruiseTypes = []string{"luxury", "standard", "budget", "river", "expedition"}

const (
	RequestPending   = "pending"
	RequestReviewed  = "reviewed"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestCompleted = "completed"
)

const (
	CarouselPersonalise = "personalise"
	CarouselCruise      = "cruise"
	CarouselPackages    = "packages"
)

const StatusActive = "active"

// Refund tiers by whole days remaining before the trip starts.
const (
	FullRefundDays = 7
	HalfRefundDays = 3
)

const MaxImageBytes = 5 << 20

var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}
