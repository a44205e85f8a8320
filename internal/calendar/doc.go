// Package calendar provides read access to Google Calendar.
//
// The client lists calendars and events, fetches single events, and finds
// free meeting slots by querying the FreeBusy API and intersecting the busy
// blocks of one or more calendars with working hours on weekdays.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClientForAccount(ctx, "default")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	events, err := client.ListEvents(ctx, "primary", time.Now(), time.Now().AddDate(0, 0, 7), 100)
package calendar
