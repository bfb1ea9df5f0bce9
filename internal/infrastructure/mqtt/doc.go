// Package mqtt provides MQTT broker connectivity for Switchboard.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS guarantees and a bounded ack wait
//   - Last Will and Testament (LWT) for offline detection
//   - Topic naming for device commands
//
// # Architecture
//
// Switchboard publishes control commands; RF bridges (microcontrollers with a
// 433MHz transmitter) subscribe to their users' device topics and key the
// transmitter.
//
//	Switchboard ─▶ MQTT Broker ─▶ RF Bridge ─▶ switch
//
// # Security Considerations
//
//   - Use TLS in production (cfg.Broker.TLS=true)
//   - Scope bridge credentials with broker ACLs on the users/{id} subtree
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := client.Topics().DeviceCommand(7, 42, "on")
//	err = client.Publish(topic, payload, 1, false)
package mqtt
