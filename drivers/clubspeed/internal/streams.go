package driver

import (
	"fmt"
	"sort"

	"github.com/datazip-inc/olake-clubspeed/constants"
	"github.com/datazip-inc/olake-clubspeed/types"
)

// streamDefinition binds a stream name to its endpoint and replication setup
type streamDefinition struct {
	Endpoint
	DefaultMode    types.SyncMode
	KeyProperties  []string
	ReplicationKey string
}

// enveloped endpoints nest records under a key and take the flat filter
func enveloped(path, key string) Endpoint {
	return Endpoint{Path: path, EnvelopeKey: key, Dialect: FlatFilter}
}

func bare(path string) Endpoint {
	return Endpoint{Path: path, Dialect: StructuredFilter}
}

func incremental(endpoint Endpoint, replicationKey string, keys ...string) streamDefinition {
	return streamDefinition{
		Endpoint:       endpoint,
		DefaultMode:    types.INCREMENTAL,
		KeyProperties:  keys,
		ReplicationKey: replicationKey,
	}
}

func fullTable(endpoint Endpoint, keys ...string) streamDefinition {
	return streamDefinition{
		Endpoint:      endpoint,
		DefaultMode:   types.FULLREFRESH,
		KeyProperties: keys,
	}
}

var streamRegistry = map[string]streamDefinition{
	"booking":                 incremental(enveloped("booking", "bookings"), "onlineBookingsId", "onlineBookingsId"),
	"booking_availability":    incremental(enveloped("bookingAvailability", "bookings"), "heatId", "heatId"),
	"check_details":           incremental(enveloped("checkDetails", "checkDetails"), "createdDate", "checkDetailId"),
	"checks":                  incremental(enveloped("checks", "checks"), "openedDate", "checkId"),
	"customers":               incremental(bare("customers"), "accountCreated", "customerId"),
	"discount_types":          incremental(bare("discountType"), "discountId", "discountId"),
	"event_heat_details":      incremental(bare("eventHeatDetails"), "added", "eventId"),
	"event_heat_types":        incremental(bare("eventHeatTypes"), "eventHeatTypeId", "eventHeatTypeId"),
	"event_reservation_links": incremental(bare("eventReservationLinks"), "eventReservationLinkId", "eventReservationLinkId"),
	"event_reservations":      incremental(bare("eventReservations"), "startTime", "eventReservationId"),
	"event_reservation_types": incremental(bare("eventReservationTypes"), "eventReservationTypeId", "eventReservationTypeId"),
	"event_rounds":            incremental(bare("eventRounds"), "eventRoundId", "eventRoundId"),
	"events":                  incremental(bare("events"), "createdHeatTime", "eventId"),
	"event_statuses":          incremental(bare("eventStatuses"), "eventStatusId", "eventStatusId"),
	"event_tasks":             incremental(bare("eventTasks"), "completedAt", "eventTaskId"),
	"event_task_types":        incremental(bare("eventTaskTypes"), "eventTaskId", "eventTaskId"),
	"event_types":             incremental(bare("eventTypes"), "eventTypeId", "eventTypeId"),
	"gift_card_history":       incremental(bare("giftCardHistory"), "transactionDate", "giftCardHistoryId"),
	"heat_details":            incremental(bare("heatDetails"), "timeAdded", "heatId"),
	"heat_main":               incremental(bare("heatMain"), "heatId", "heatId"),
	"heat_types":              incremental(bare("heatTypes"), "heatTypesId", "heatTypesId"),
	"memberships":             incremental(bare("memberships"), "membershipTypeId", "membershipTypeId"),
	"membership_types":        incremental(bare("membershipTypes"), "membershipTypeId", "membershipTypeId"),
	"payments":                incremental(bare("payments"), "payDate", "paymentId"),
	"product_classes":         incremental(bare("productClasses"), "productClassId", "productClassId"),
	"products":                incremental(enveloped("products", "products"), "productId", "productId"),
	"reservations":            incremental(enveloped("reservations", "reservations"), "createdAt", "onlineBookingReservationsId"),
	"sources":                 incremental(bare("sources"), "sourceId", "sourceId"),
	"taxes":                   incremental(enveloped("taxes", "taxes"), "taxId", "taxId"),
	"users":                   incremental(bare("users"), "userId", "userId"),

	"check_totals": fullTable(bare("checkTotals"), "checkId"),
	"racers":       fullTable(bare("racers"), "racerId"),
}

// StreamNames lists every supported stream in lexical order
func StreamNames() []string {
	names := make([]string, 0, len(streamRegistry))
	for name := range streamRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupStream(name string) (streamDefinition, error) {
	definition, found := streamRegistry[name]
	if !found {
		return streamDefinition{}, fmt.Errorf("%w: %s", constants.ErrStreamNotFound, name)
	}
	return definition, nil
}

// stream renders the definition as a discoverable stream. Streams with a
// replication key can run either mode; the rest are full refresh only.
func (d streamDefinition) stream(name string) *types.Stream {
	stream := types.NewStream(name, constants.DefaultNamespace).
		WithPrimaryKey(d.KeyProperties...).
		WithSyncMode(types.FULLREFRESH)

	if d.ReplicationKey != "" {
		stream.WithSyncMode(types.INCREMENTAL).WithCursorField(d.ReplicationKey)
		stream.CursorField = d.ReplicationKey
	}
	stream.SyncMode = d.DefaultMode
	return stream
}
