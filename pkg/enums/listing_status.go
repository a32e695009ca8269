package enums

// ListingStatus tracks the sellable state of an artwork listing.
type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusAuction   ListingStatus = "auction"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusEnded     ListingStatus = "ended"
)
