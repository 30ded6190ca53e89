package config

import (
	"os"
	"time"

	client "github.com/influxdata/influxdb1-client/v2"
)

var InfluxDB *InfluxClient

type InfluxClient struct {
	client   client.Client
	database string
}

func NewInfluxDB() error {
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr: os.Getenv("INFLUXDB_URL"),
	})

	if err != nil {
		return err
	}

	InfluxDB = NewInfluxClient(c, os.Getenv("INFLUXDB_DATABASE"))

	return nil
}

func NewInfluxClient(c client.Client, database string) *InfluxClient {
	return &InfluxClient{
		client:   c,
		database: database,
	}
}

func (c *InfluxClient) NewBatchPoints() (client.BatchPoints, error) {
	return client.NewBatchPoints(client.BatchPointsConfig{
		Database:  c.database,
		Precision: "ns",
	})
}

func (c *InfluxClient) NewPoint(name string, tags map[string]string, fields map[string]interface{}, at time.Time) error {
	bp, err := c.NewBatchPoints()
	if err != nil {
		Logger.Errorf("Failed to create new batch point %v", err.Error())
		return err
	}

	point, err := client.NewPoint(name, tags, fields, at)
	if err != nil {
		Logger.Errorf("Error %v", err.Error())
		return err
	}

	bp.AddPoint(point)

	if err := c.client.Write(bp); err != nil {
		Logger.Errorf("Error %v", err.Error())
		return err
	}

	return nil
}

func (c *InfluxClient) Query(command string) (*client.Response, error) {
	return c.client.Query(client.NewQuery(command, c.database, "ns"))
}
